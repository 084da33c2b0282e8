package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SessionDir maps a session id onto its directory. Every component goes through here,
// so a registry entry always names exactly one directory.
func SessionDir(root, sessionId string) string {
	return filepath.Join(root, sessionId)
}

// SessionArchivePath is the zip written next to the session directory for multi-file downloads.
func SessionArchivePath(root, sessionId string) string {
	return filepath.Join(root, sessionId+".zip")
}

// RemoveSessionFiles deletes the session directory and its archive. Missing paths are not errors.
func RemoveSessionFiles(root, sessionId string) error {
	var errs []error
	if err := os.RemoveAll(SessionDir(root, sessionId)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	if err := os.Remove(SessionArchivePath(root, sessionId)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResetFolder removes dir and creates it again empty.
func ResetFolder(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NextAvailablePath returns the first path under dir that does not exist, using fileName
// and if it exists, trying base-2.ext, base-3.ext, ... (e.g. a.gif -> a-2.gif, a-3.gif).
func NextAvailablePath(dir, fileName string) string {
	return NextAvailablePathFunc(dir, fileName, nil)
}

// NextAvailablePathFunc is NextAvailablePath that also skips candidates usable rejects.
func NextAvailablePathFunc(dir, fileName string, usable func(candidate string) bool) string {
	free := func(candidate string) bool {
		if _, err := os.Stat(candidate); !os.IsNotExist(err) {
			return false
		}
		return usable == nil || usable(candidate)
	}
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(filepath.Base(fileName), ext)
	if base == "" {
		base = fileName
		ext = ""
	}
	try := filepath.Join(dir, fileName)
	if free(try) {
		return try
	}
	for n := 2; ; n++ {
		try = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
		if free(try) {
			return try
		}
	}
}

// CopyWithContext copies from src to dst while respecting context cancellation.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 256*1024)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if writeErr == nil {
					writeErr = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
