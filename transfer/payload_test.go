package transfer

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muingY/gif-compressor-backend/types"
)

type testPart struct {
	filename    string
	contentType string
	body        []byte
}

// buildMultipart returns a reader over parts and the encoded body length.
func buildMultipart(t *testing.T, parts ...testPart) (*multipart.Reader, int64) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		disposition := `form-data; name="file"`
		if p.filename != "" {
			disposition += `; filename="` + p.filename + `"`
		}
		header.Set("Content-Disposition", disposition)
		if p.contentType != "" {
			header.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	length := int64(buf.Len())
	return multipart.NewReader(&buf, mw.Boundary()), length
}

func testPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedMimeTypes: []string{"image/gif"},
		MaxTotalSize:     10_000_000,
		MaxFileCount:     10,
		OutputSuffix:     "-compressed",
	}
}

func TestSavePayloadRejectsOversizedBeforeWriting(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, _ := buildMultipart(t, testPart{filename: "a.gif", contentType: "image/gif", body: []byte("GIF89a")})

	result, err := SavePayload(context.Background(), reader, 10_000_001, saveDir, testPolicy())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &IngestError{Kind: SizeLimitExceeded}))
	_, statErr := os.Stat(saveDir)
	assert.True(t, os.IsNotExist(statErr), "session directory must not be created")
}

func TestSavePayloadMixedTypesKeepsAcceptedFiles(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "notes.txt", contentType: "text/plain", body: []byte("hello")},
		testPart{filename: "cat.gif", contentType: "image/gif", body: []byte("GIF89a-cat")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)

	require.Len(t, result.Accepted, 1)
	assert.Equal(t, "cat.gif", result.Accepted[0].OriginalFilename)
	assert.Equal(t, filepath.Join(saveDir, "cat.gif"), result.Accepted[0].StoredPath)
	data, err := os.ReadFile(result.Accepted[0].StoredPath)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a-cat", string(data))

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, types.FailureRecord{
		Filename: "notes.txt",
		Stage:    types.StageIngestion,
		Kind:     TypeMismatch,
		Reason:   `content type "text/plain" is not allowed`,
	}, result.Rejected[0])

	_, err = os.Stat(filepath.Join(saveDir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestSavePayloadNothingAcceptedRemovesDirectory(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "a.png", contentType: "image/png", body: []byte("png")},
		testPart{filename: "b.txt", body: []byte("no content type")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, &IngestError{Kind: FileNotAttached}))
	_, statErr := os.Stat(saveDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSavePayloadEmptyBodyIsFileNotAttached(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader := multipart.NewReader(strings.NewReader(""), "boundary")

	_, err := SavePayload(context.Background(), reader, 0, saveDir, testPolicy())

	var ingestErr *IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, FileNotAttached, ingestErr.Kind)
	assert.Equal(t, types.ErrnoFileNotAttached, ingestErr.Errno())
}

func TestSavePayloadNilReader(t *testing.T) {
	_, err := SavePayload(context.Background(), nil, 0, filepath.Join(t.TempDir(), "s"), testPolicy())
	assert.True(t, errors.Is(err, &IngestError{Kind: FileNotAttached}))
}

func TestSavePayloadStopsAtFileCount(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	policy := testPolicy()
	policy.MaxFileCount = 2
	reader, length := buildMultipart(t,
		testPart{filename: "skip.txt", contentType: "text/plain", body: []byte("x")},
		testPart{filename: "1.gif", contentType: "image/gif", body: []byte("1")},
		testPart{filename: "2.gif", contentType: "image/gif", body: []byte("2")},
		testPart{filename: "3.gif", contentType: "image/gif", body: []byte("3")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, policy)
	require.NoError(t, err)

	assert.Len(t, result.Accepted, 2)
	assert.Len(t, result.Rejected, 1)
	_, err = os.Stat(filepath.Join(saveDir, "3.gif"))
	assert.True(t, os.IsNotExist(err))
}

func TestSavePayloadDuplicateNamesDoNotOverwrite(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "a.gif", contentType: "image/gif", body: []byte("first")},
		testPart{filename: "a.gif", contentType: "image/gif", body: []byte("second")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	require.Len(t, result.Accepted, 2)
	assert.Equal(t, filepath.Join(saveDir, "a.gif"), result.Accepted[0].StoredPath)
	assert.Equal(t, filepath.Join(saveDir, "a-2.gif"), result.Accepted[1].StoredPath)
}

func TestSavePayloadStripsDirectoryFromFilename(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "../../escape.gif", contentType: "image/gif", body: []byte("x")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)
	assert.Equal(t, saveDir, filepath.Dir(result.Accepted[0].StoredPath))
}

func TestSavePayloadMissingFilenameIsFileErr(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{contentType: "image/gif", body: []byte("x")},
		testPart{filename: "ok.gif", contentType: "image/gif", body: []byte("y")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, FileErr, result.Rejected[0].Kind)
	assert.Equal(t, "file", result.Rejected[0].Filename)
}

func TestSavePayloadContentTypeParameters(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "a.gif", contentType: "IMAGE/GIF; charset=binary", body: []byte("x")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 1)
}

func TestIngestErrorErrno(t *testing.T) {
	cases := map[IngestErrKind]int{
		SizeLimitExceeded: types.ErrnoSizeLimitExceeded,
		FileNotAttached:   types.ErrnoFileNotAttached,
		FileSystemFail:    types.ErrnoFileSystemFail,
		ServerErr:         types.ErrnoServerErr,
	}
	for kind, errno := range cases {
		assert.Equal(t, errno, (&IngestError{Kind: kind}).Errno(), kind)
	}
}

func TestSavePayloadCaseOnlyDuplicatesGetOwnStem(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "cat.gif", contentType: "image/gif", body: []byte("lower")},
		testPart{filename: "cat.GIF", contentType: "image/gif", body: []byte("upper")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	require.Len(t, result.Accepted, 2)
	assert.Equal(t, filepath.Join(saveDir, "cat.gif"), result.Accepted[0].StoredPath)
	assert.Equal(t, filepath.Join(saveDir, "cat-2.GIF"), result.Accepted[1].StoredPath)
	assert.Equal(t, "cat.GIF", result.Accepted[1].OriginalFilename)
}

func TestSavePayloadNeverStoresOutputLookingNames(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t,
		testPart{filename: "dog.gif", contentType: "image/gif", body: []byte("dog")},
		testPart{filename: "dog-compressed.gif", contentType: "image/gif", body: []byte("already small")},
		testPart{filename: "DOG-COMPRESSED.GIF", contentType: "image/gif", body: []byte("shouting")},
	)

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	require.Len(t, result.Accepted, 3)
	assert.Equal(t, filepath.Join(saveDir, "dog.gif"), result.Accepted[0].StoredPath)
	assert.Equal(t, filepath.Join(saveDir, "dog-compressed-2.gif"), result.Accepted[1].StoredPath)
	assert.Equal(t, filepath.Join(saveDir, "DOG-COMPRESSED-3.GIF"), result.Accepted[2].StoredPath)

	outputs, err := filepath.Glob(filepath.Join(saveDir, "*-compressed.gif"))
	require.NoError(t, err)
	assert.Empty(t, outputs)
}

func TestSavePayloadBoundsRejectedParts(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	policy := testPolicy()
	policy.MaxFileCount = 1
	parts := make([]testPart, 0, 10)
	for range 9 {
		parts = append(parts, testPart{filename: "x.txt", contentType: "text/plain", body: []byte("x")})
	}
	parts = append(parts, testPart{filename: "late.gif", contentType: "image/gif", body: []byte("gif")})
	reader, _ := buildMultipart(t, parts...)

	// chunked bodies declare no length and skip the size gate
	result, err := SavePayload(context.Background(), reader, -1, saveDir, policy)

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, &IngestError{Kind: FileNotAttached}))
	_, statErr := os.Stat(saveDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSavePayloadReportsSessionDir(t *testing.T) {
	saveDir := filepath.Join(t.TempDir(), "session")
	reader, length := buildMultipart(t, testPart{filename: "a.gif", contentType: "image/gif", body: []byte("x")})

	result, err := SavePayload(context.Background(), reader, length, saveDir, testPolicy())
	require.NoError(t, err)
	assert.Equal(t, saveDir, result.SessionDir)
}
