package types

// Stage names where a per-file failure happened.
const (
	StageIngestion   = "ingestion"
	StageCompression = "compression"
)

// UploadedFile is one accepted multipart part, stored under the session directory.
type UploadedFile struct {
	StoredPath       string
	OriginalFilename string
}

// FailureRecord is a per-file failure kept only for the response of the batch.
type FailureRecord struct {
	Filename string
	Stage    string // StageIngestion or StageCompression
	Kind     string // TypeMismatch, FileErr, FileSystemFail, CompressFail
	Reason   string
}

// IngestResult is the partial result of one ingestion call.
type IngestResult struct {
	SessionDir string
	Accepted   []UploadedFile
	Rejected   []FailureRecord
}
