package compress

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muingY/gif-compressor-backend/types"
)

var fixturePalette = color.Palette{
	color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff},
	color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
	color.RGBA{R: 0xe0, G: 0x20, B: 0x20, A: 0xff},
	color.RGBA{R: 0x20, G: 0x20, B: 0xe0, A: 0xff},
}

// writeFixtureGIF writes an animated GIF with frames of width x height and returns its path.
func writeFixtureGIF(t *testing.T, dir, name string, width, height, frames int) string {
	t.Helper()
	g := &gif.GIF{LoopCount: 3}
	for f := range frames {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), fixturePalette)
		for y := range height {
			for x := range width {
				frame.SetColorIndex(x, y, uint8((x/7+y/5+f)%len(fixturePalette)))
			}
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 5+f)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func decodeFile(t *testing.T, path string) *gif.GIF {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

func TestCompressHalvesFramesOntoTwoColours(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "anim.gif", 100, 100, 10)

	out, err := NewCompressor(DefaultPolicy()).Compress(raw, dir, "-compressed")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "anim-compressed.gif"), out)

	g := decodeFile(t, out)
	require.Len(t, g.Image, 10)
	assert.Equal(t, 0, g.LoopCount)
	assert.Equal(t, 50, g.Config.Width)
	assert.Equal(t, 50, g.Config.Height)
	for i, frame := range g.Image {
		assert.Equal(t, image.Rect(0, 0, 50, 50), frame.Bounds(), "frame %d", i)
		assert.Equal(t, 5+i, g.Delay[i], "frame %d delay", i)
		for _, c := range frame.Palette {
			r, gg, b, _ := c.RGBA()
			black := r == 0 && gg == 0 && b == 0
			white := r == 0xffff && gg == 0xffff && b == 0xffff
			assert.True(t, black || white, "frame %d has colour %v", i, c)
		}
	}
}

func TestCompressIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "anim.gif", 40, 30, 3)
	c := NewCompressor(DefaultPolicy())

	first, err := c.Compress(raw, dir, "-a")
	require.NoError(t, err)
	second, err := c.Compress(raw, dir, "-b")
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompressTinyImageKeepsOnePixel(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "dot.gif", 1, 1, 1)

	out, err := NewCompressor(DefaultPolicy()).Compress(raw, dir, "-compressed")
	require.NoError(t, err)

	g := decodeFile(t, out)
	assert.Equal(t, 1, g.Config.Width)
	assert.Equal(t, 1, g.Config.Height)
}

func TestCompressNotAGIF(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "fake.gif")
	require.NoError(t, os.WriteFile(raw, []byte("this is not a gif"), 0o644))

	_, err := NewCompressor(DefaultPolicy()).Compress(raw, dir, "-compressed")

	assert.True(t, errors.Is(err, &CompressError{Kind: CompressFail}))
	_, statErr := os.Stat(filepath.Join(dir, "fake-compressed.gif"))
	assert.True(t, os.IsNotExist(statErr), "no output may be written for undecodable input")
}

func TestCompressMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCompressor(DefaultPolicy()).Compress(filepath.Join(dir, "gone.gif"), dir, "-compressed")

	var compressErr *CompressError
	require.ErrorAs(t, err, &compressErr)
	assert.Equal(t, FileSystemFail, compressErr.Kind)
	assert.Equal(t, "gone.gif", compressErr.Filename)
}

func TestCompressUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "anim.gif", 8, 8, 1)

	_, err := NewCompressor(DefaultPolicy()).Compress(raw, filepath.Join(dir, "missing-dir"), "-compressed")
	assert.True(t, errors.Is(err, &CompressError{Kind: FileSystemFail}))
}

func TestCompressNeverOverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "dog.gif", 8, 8, 1)
	existing := filepath.Join(dir, "dog-compressed.gif")
	require.NoError(t, os.WriteFile(existing, []byte("user upload"), 0o644))

	_, err := NewCompressor(DefaultPolicy()).Compress(raw, dir, "-compressed")

	assert.True(t, errors.Is(err, &CompressError{Kind: FileSystemFail}))
	data, readErr := os.ReadFile(existing)
	require.NoError(t, readErr)
	assert.Equal(t, "user upload", string(data))
}

func TestPolicyScaled(t *testing.T) {
	p := DefaultPolicy()
	w, h := p.scaled(101, 3)
	assert.Equal(t, 50, w)
	assert.Equal(t, 1, h)

	w, h = Policy{ScaleDivisor: 0}.scaled(7, 9)
	assert.Equal(t, 7, w)
	assert.Equal(t, 9, h)
}

func TestRenderFramesHonoursDisposal(t *testing.T) {
	palette := color.Palette{color.Transparent, color.Black, color.White}
	full := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	for i := range full.Pix {
		full.Pix[i] = 2
	}
	corner := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
	for i := range corner.Pix {
		corner.Pix[i] = 1
	}
	dot := image.NewPaletted(image.Rect(3, 3, 4, 4), palette)
	dot.Pix[0] = 1
	g := &gif.GIF{
		Image:    []*image.Paletted{full, corner, dot},
		Delay:    []int{0, 0, 0},
		Disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{Width: 4, Height: 4},
	}

	frames, err := renderFrames(g)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black := color.RGBA{A: 0xff}
	assert.Equal(t, white, frames[0].RGBAAt(0, 0))
	assert.Equal(t, black, frames[1].RGBAAt(0, 0))
	assert.Equal(t, white, frames[1].RGBAAt(3, 3))
	// frame 1 was restored before frame 2 was drawn
	assert.Equal(t, white, frames[2].RGBAAt(0, 0))
	assert.Equal(t, black, frames[2].RGBAAt(3, 3))
}

func TestCompressAllKeepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := writeFixtureGIF(t, dir, "one.gif", 10, 10, 2)
	bad := filepath.Join(dir, "bad.gif")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	good2 := writeFixtureGIF(t, dir, "two.gif", 10, 10, 2)

	files := []types.UploadedFile{
		{StoredPath: good1, OriginalFilename: "one.gif"},
		{StoredPath: bad, OriginalFilename: "bad.gif"},
		{StoredPath: good2, OriginalFilename: "two.gif"},
	}
	results := CompressAll(context.Background(), NewCompressor(DefaultPolicy()), files, dir, "-compressed", 2)

	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, files[i], result.File)
	}
	assert.NoError(t, results[0].Err)
	assert.Equal(t, filepath.Join(dir, "one-compressed.gif"), results[0].OutputPath)
	assert.True(t, errors.Is(results[1].Err, &CompressError{Kind: CompressFail}))
	assert.Empty(t, results[1].OutputPath)
	assert.NoError(t, results[2].Err)
}

func TestCompressAllCancelled(t *testing.T) {
	dir := t.TempDir()
	raw := writeFixtureGIF(t, dir, "one.gif", 10, 10, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := CompressAll(ctx, NewCompressor(DefaultPolicy()), []types.UploadedFile{{StoredPath: raw, OriginalFilename: "one.gif"}}, dir, "-compressed", 0)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
