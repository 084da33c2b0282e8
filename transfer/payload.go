package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

// UploadPolicy bounds what one ingestion call accepts.
type UploadPolicy struct {
	AllowedMimeTypes []string
	MaxTotalSize     int64  // compared with the declared Content-Length only
	MaxFileCount     int    // accepted files; rejected parts do not count
	OutputSuffix     string // outputs are {stem}{suffix}.gif; stored names never clash with one
}

// partsPerFile bounds how many parts, accepted or not, one call reads per allowed file.
const partsPerFile = 4

// SavePayload streams multipart parts into saveDir.
//
// The size check trusts contentLength as declared by the client; a body longer than declared
// is not cut off here. Per-file failures are recorded in the result and the next part is
// processed; only a batch with zero accepted files is an error, and in that case a directory
// created by this call is removed again. At most partsPerFile * MaxFileCount parts are read.
func SavePayload(ctx context.Context, reader *multipart.Reader, contentLength int64, saveDir string, policy UploadPolicy) (*types.IngestResult, error) {
	if contentLength > policy.MaxTotalSize {
		return nil, &IngestError{Kind: SizeLimitExceeded, Err: fmt.Errorf("content length %d exceeds %d", contentLength, policy.MaxTotalSize)}
	}

	created := false
	if _, err := os.Stat(saveDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			return nil, &IngestError{Kind: FileSystemFail, Err: err}
		}
		created = true
	} else if err != nil {
		return nil, &IngestError{Kind: FileSystemFail, Err: err}
	}

	result := &types.IngestResult{SessionDir: saveDir}
	var streamErr error
	if reader == nil {
		streamErr = errors.New("request body is not multipart")
	}

	names := newStoredNames(policy.OutputSuffix)
	maxParts := max(1, policy.MaxFileCount) * partsPerFile
	for parts := 0; reader != nil && len(result.Accepted) < policy.MaxFileCount; parts++ {
		if parts == maxParts {
			tool.DefaultLogger.Warnf("[Ingest] Stopped after %d parts, %d accepted", parts, len(result.Accepted))
			break
		}
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			tool.DefaultLogger.Warnf("[Ingest] Multipart stream ended with error: %v", err)
			break
		}

		uploaded, failure := savePart(ctx, part, saveDir, policy, names)
		if closeErr := part.Close(); closeErr != nil {
			tool.DefaultLogger.Debugf("[Ingest] Failed to close part: %v", closeErr)
		}
		if failure != nil {
			tool.DefaultLogger.Infof("[Ingest] Rejected %q: %s (%s)", failure.Filename, failure.Kind, failure.Reason)
			result.Rejected = append(result.Rejected, *failure)
			continue
		}
		result.Accepted = append(result.Accepted, *uploaded)
	}

	if len(result.Accepted) > 0 {
		return result, nil
	}

	if created {
		if err := os.RemoveAll(saveDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			tool.DefaultLogger.Errorf("[Ingest] Failed to remove %s: %v", saveDir, err)
			return nil, &IngestError{Kind: FileSystemFail, Err: err}
		}
	}
	if streamErr != nil && reader != nil && !isTruncatedStream(streamErr) {
		return nil, &IngestError{Kind: ServerErr, Err: streamErr}
	}
	return nil, &IngestError{Kind: FileNotAttached, Err: streamErr}
}

func savePart(ctx context.Context, part *multipart.Part, saveDir string, policy UploadPolicy, names *storedNames) (*types.UploadedFile, *types.FailureRecord) {
	filename := part.FileName()
	displayName := filename
	if displayName == "" {
		displayName = part.FormName()
	}

	if !mimeAllowed(part.Header.Get("Content-Type"), policy.AllowedMimeTypes) {
		return nil, &types.FailureRecord{
			Filename: displayName,
			Stage:    types.StageIngestion,
			Kind:     TypeMismatch,
			Reason:   fmt.Sprintf("content type %q is not allowed", part.Header.Get("Content-Type")),
		}
	}

	name := filepath.Base(filename)
	if filename == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, &types.FailureRecord{
			Filename: displayName,
			Stage:    types.StageIngestion,
			Kind:     FileErr,
			Reason:   "part has no filename",
		}
	}

	destination := names.reserve(saveDir, name)
	if err := writePart(ctx, part, destination); err != nil {
		return nil, &types.FailureRecord{
			Filename: filename,
			Stage:    types.StageIngestion,
			Kind:     FileErr,
			Reason:   err.Error(),
		}
	}

	tool.DefaultLogger.Debugf("[Ingest] Saved %q to %s", filename, destination)
	return &types.UploadedFile{StoredPath: destination, OriginalFilename: filename}, nil
}

func writePart(ctx context.Context, src io.Reader, destination string) (err error) {
	file, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close file failed: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(destination)
		}
	}()

	if _, err = tool.CopyWithContext(ctx, file, src); err != nil {
		return fmt.Errorf("write file failed: %w", err)
	}
	return nil
}

// isTruncatedStream reports a body that simply ended early, e.g. an empty upload.
func isTruncatedStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func mimeAllowed(contentType string, allowed []string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(a, mediaType)
	})
}
