package share

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/muingY/gif-compressor-backend/compress"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

var (
	// ErrSessionUnauthorized is returned for a cookie that cannot be a session id at all.
	ErrSessionUnauthorized = errors.New("session id is malformed")
	// ErrSessionNotFound is returned for a well-formed id that is unknown or expired.
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNoOutputs       = errors.New("no compressed outputs")
	ErrPackageInternal = errors.New("failed to package compressed outputs")
)

// SessionChecker answers whether a session is live.
type SessionChecker interface {
	Contains(id string) bool
}

// Packager serves the compressed outputs of a session: one file as-is, several as a zip.
type Packager struct {
	root     string
	suffix   string
	sessions SessionChecker
}

func NewPackager(root, suffix string, sessions SessionChecker) *Packager {
	return &Packager{root: root, suffix: suffix, sessions: sessions}
}

// Package validates sessionId and returns what should be sent to the client.
func (p *Packager) Package(sessionId string) (*types.PackageResult, error) {
	if !tool.IsSessionID(sessionId) {
		return nil, ErrSessionUnauthorized
	}
	if !p.sessions.Contains(sessionId) {
		return nil, ErrSessionNotFound
	}

	outputs, err := p.Outputs(sessionId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackageInternal, err)
	}

	result := &types.PackageResult{
		SessionId: sessionId,
		Analytics: p.Analytics(sessionId, outputs),
	}
	switch len(outputs) {
	case 0:
		return nil, ErrNoOutputs
	case 1:
		result.Path = outputs[0]
	default:
		archivePath := tool.SessionArchivePath(p.root, sessionId)
		if err := WriteArchive(archivePath, outputs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPackageInternal, err)
		}
		result.Path = archivePath
		result.IsArchive = true
	}
	return result, nil
}

// Outputs lists the compressed files of a session, sorted by name.
func (p *Packager) Outputs(sessionId string) ([]string, error) {
	pattern := filepath.Join(tool.SessionDir(p.root, sessionId), "*"+p.suffix+".gif")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	outputs := matches[:0]
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		outputs = append(outputs, match)
	}
	slices.Sort(outputs)
	return outputs, nil
}

// Analytics pairs every output with the raw file that produced it. Pairs whose
// metadata cannot be read are left out.
func (p *Packager) Analytics(sessionId string, outputs []string) []types.CompressionResult {
	dir := tool.SessionDir(p.root, sessionId)
	entries, err := os.ReadDir(dir)
	if err != nil {
		tool.DefaultLogger.Debugf("[Download] Failed to read %s: %v", dir, err)
		return nil
	}

	raws := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rawPath := filepath.Join(dir, entry.Name())
		if slices.Contains(outputs, rawPath) {
			continue
		}
		raws[compress.OutputPath(rawPath, dir, p.suffix)] = rawPath
	}

	analytics := make([]types.CompressionResult, 0, len(outputs))
	for _, output := range outputs {
		rawPath, ok := raws[output]
		if !ok {
			continue
		}
		result, err := Analyze(rawPath, output)
		if err != nil {
			tool.DefaultLogger.Debugf("[Download] Skipping analytics for %s: %v", output, err)
			continue
		}
		analytics = append(analytics, result)
	}
	return analytics
}

// Analyze reads the sizes of a raw/compressed pair.
func Analyze(rawPath, compressedPath string) (types.CompressionResult, error) {
	rawInfo, err := os.Stat(rawPath)
	if err != nil {
		return types.CompressionResult{}, err
	}
	compressedInfo, err := os.Stat(compressedPath)
	if err != nil {
		return types.CompressionResult{}, err
	}
	return types.CompressionResult{
		RawPath:          rawPath,
		CompressedPath:   compressedPath,
		Filename:         filepath.Base(rawPath),
		RawSize:          rawInfo.Size(),
		CompressedSize:   compressedInfo.Size(),
		ReductionPercent: ReductionPercent(rawInfo.Size(), compressedInfo.Size()),
	}, nil
}

// ReductionPercent is (1 - compressed/raw) * 100, rounded to two decimals. An empty raw file yields 0.
func ReductionPercent(rawSize, compressedSize int64) float64 {
	if rawSize <= 0 {
		return 0
	}
	rate := (1 - float64(compressedSize)/float64(rawSize)) * 100
	return math.Round(rate*100) / 100
}

// WriteArchive writes files into a store-only zip at archivePath. The archive is built
// next to its destination and renamed into place, so readers never see a partial zip.
func WriteArchive(archivePath string, files []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(archivePath), strings.TrimSuffix(filepath.Base(archivePath), ".zip")+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, file := range files {
		if err = addToArchive(zw, file); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), archivePath); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}

func addToArchive(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive header for %s: %w", path, err)
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Store

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive entry for %s: %w", path, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}
