package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/muingY/gif-compressor-backend/tool"
)

// Compressor re-encodes GIF files under a fixed Policy. It keeps no state between calls
// and is safe for concurrent use.
type Compressor struct {
	policy Policy
}

func NewCompressor(policy Policy) *Compressor {
	return &Compressor{policy: policy}
}

// OutputPath is where Compress writes the result for rawPath.
func OutputPath(rawPath, outputDir, suffix string) string {
	return filepath.Join(outputDir, tool.FileStem(rawPath)+suffix+".gif")
}

// Compress decodes rawPath, downsamples every frame and writes
// {outputDir}/{stem}{suffix}.gif. Nothing is written unless every frame encoded, and an
// output that already exists is a FileSystemFail.
func (c *Compressor) Compress(rawPath, outputDir, suffix string) (string, error) {
	filename := filepath.Base(rawPath)

	in, err := os.Open(rawPath)
	if err != nil {
		return "", &CompressError{Kind: FileSystemFail, Filename: filename, Err: err}
	}
	decoded, err := gif.DecodeAll(in)
	if closeErr := in.Close(); closeErr != nil {
		tool.DefaultLogger.Debugf("[Compress] Failed to close %s: %v", rawPath, closeErr)
	}
	if err != nil {
		return "", &CompressError{Kind: CompressFail, Filename: filename, Err: err}
	}

	data, err := c.encode(decoded)
	if err != nil {
		return "", &CompressError{Kind: CompressFail, Filename: filename, Err: err}
	}

	outputPath := OutputPath(rawPath, outputDir, suffix)
	if err := writeOutput(outputPath, data); err != nil {
		return "", &CompressError{Kind: FileSystemFail, Filename: filename, Err: err}
	}
	return outputPath, nil
}

// writeOutput never replaces an existing file; two raws mapping onto one output is an error.
func writeOutput(path string, data []byte) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	_, err = file.Write(data)
	return err
}

func (c *Compressor) encode(decoded *gif.GIF) ([]byte, error) {
	frames, err := renderFrames(decoded)
	if err != nil {
		return nil, err
	}

	bounds := frames[0].Bounds()
	width, height := c.policy.scaled(bounds.Dx(), bounds.Dy())

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		Disposal:  make([]byte, 0, len(frames)),
		LoopCount: c.policy.LoopCount,
		Config: image.Config{
			ColorModel: c.policy.Palette,
			Width:      width,
			Height:     height,
		},
	}
	for i, frame := range frames {
		if frame.Bounds() != bounds {
			return nil, fmt.Errorf("frame %d: bounds %v differ from %v", i, frame.Bounds(), bounds)
		}
		out.Image = append(out.Image, quantize(downsample(frame, width, height), c.policy))
		delay := 0
		if i < len(decoded.Delay) {
			delay = decoded.Delay[i]
		}
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
