package compress

import (
	"fmt"
)

// CompressErrKind names why a single file could not be compressed.
type CompressErrKind string

const (
	CompressFail   CompressErrKind = "CompressFail"
	FileSystemFail CompressErrKind = "FileSystemFail"
)

// CompressError is the per-file failure of the engine. It never aborts sibling files.
type CompressError struct {
	Kind     CompressErrKind
	Filename string
	Err      error
}

func (e *CompressError) Error() string {
	return fmt.Sprintf("compress %s: %s: %v", e.Filename, e.Kind, e.Err)
}

func (e *CompressError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, &CompressError{Kind: k}) match on kind alone.
func (e *CompressError) Is(target error) bool {
	t, ok := target.(*CompressError)
	return ok && t.Err == nil && t.Filename == "" && t.Kind == e.Kind
}
