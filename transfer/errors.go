package transfer

import (
	"fmt"

	"github.com/muingY/gif-compressor-backend/types"
)

// IngestErrKind names a batch-level ingestion failure.
type IngestErrKind string

const (
	SizeLimitExceeded IngestErrKind = "SizeLimitExceeded"
	FileNotAttached   IngestErrKind = "FileNotAttached"
	FileSystemFail    IngestErrKind = "FileSystemFail"
	ServerErr         IngestErrKind = "ServerErr"
)

// Per-file ingestion failures. They end up in FailureRecord.Kind and never abort the batch.
const (
	TypeMismatch = "TypeMismatch"
	FileErr      = "FileErr"
)

// IngestError is returned by SavePayload when the whole batch failed.
type IngestError struct {
	Kind IngestErrKind
	Err  error
}

func (e *IngestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ingest: %s", e.Kind)
	}
	return fmt.Sprintf("ingest: %s: %v", e.Kind, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, &IngestError{Kind: k}) match on kind alone.
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Errno maps the kind onto the numeric code sent to clients.
func (e *IngestError) Errno() int {
	switch e.Kind {
	case SizeLimitExceeded:
		return types.ErrnoSizeLimitExceeded
	case FileNotAttached:
		return types.ErrnoFileNotAttached
	case FileSystemFail:
		return types.ErrnoFileSystemFail
	default:
		return types.ErrnoServerErr
	}
}
