package compress

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/muingY/gif-compressor-backend/types"
)

// FileResult is the outcome of compressing one uploaded file.
type FileResult struct {
	File       types.UploadedFile
	OutputPath string
	Err        error
}

// CompressAll runs Compress for every file with at most workers in flight.
// Results keep the order of files; a failed file never stops the others.
func CompressAll(ctx context.Context, c *Compressor, files []types.UploadedFile, outputDir, suffix string, workers int) []FileResult {
	results := make([]FileResult, len(files))
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			results[i].File = file
			if err := ctx.Err(); err != nil {
				results[i].Err = &CompressError{Kind: CompressFail, Filename: file.OriginalFilename, Err: err}
				return nil
			}
			outputPath, err := c.Compress(file.StoredPath, outputDir, suffix)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].OutputPath = outputPath
			return nil
		})
	}
	_ = g.Wait()
	return results
}
