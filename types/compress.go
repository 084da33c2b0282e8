package types

import "fmt"

// Batch-level error codes returned as {"error": <errno>}.
const (
	ErrnoSizeLimitExceeded = 0
	ErrnoFileNotAttached   = 1
	ErrnoFileSystemFail    = 3
	ErrnoServerErr         = 4
	ErrnoCompressFail      = 5
)

// CompressionResult is derived from filesystem metadata of a raw/compressed pair.
type CompressionResult struct {
	RawPath          string  `json:"-"`
	CompressedPath   string  `json:"-"`
	Filename         string  `json:"filename"`
	RawSize          int64   `json:"raw_size"`
	CompressedSize   int64   `json:"compressed_size"`
	ReductionPercent float64 `json:"compress_rate"`
}

// FailItem is the response form of a FailureRecord.
type FailItem struct {
	Filename  string `json:"filename"`
	ErrorType string `json:"error-type"`
	Error     string `json:"error"`
}

// CompressResponse is the body of a successful POST /compress.
type CompressResponse struct {
	Success     int                 `json:"success"`
	Fail        int                 `json:"fail"`
	SuccessList []CompressionResult `json:"success_list"`
	FailList    []FailItem          `json:"fail_list"`
}

// CompressOutcome is what the pipeline hands back to the HTTP layer.
type CompressOutcome struct {
	SessionId    string
	CookieMaxAge int // seconds, the session TTL
	Response     *CompressResponse
}

// PipelineError is a batch-level failure that aborts the whole request.
type PipelineError struct {
	Errno    int
	Err      error
	FailList []FailItem // per-file failures, set when every file failed compression
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pipeline failed (errno %d)", e.Errno)
	}
	return fmt.Sprintf("pipeline failed (errno %d): %v", e.Errno, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// PackageResult is what GET /download serves.
type PackageResult struct {
	SessionId string
	Path      string
	IsArchive bool
	Analytics []CompressionResult
}
