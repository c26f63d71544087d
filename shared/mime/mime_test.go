package mime_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/shared/failure"
	"roombooking/shared/mime"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	allowed   = []string{"image/jpeg", "image/png", "image/gif"}
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("file")
	require.NoError(t, err)

	return header
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "image/png", mime.Detect(pngHeader))
	assert.Equal(t, "image/gif", mime.Detect(gifHeader))
	assert.Equal(t, "text/plain", mime.Detect([]byte("hello")))
	assert.Equal(t, ".png", mime.Extension(pngHeader))
}

func TestIsAllowed(t *testing.T) {
	assert.True(t, mime.IsAllowed("image/png", allowed))
	assert.False(t, mime.IsAllowed("text/plain", allowed))
	assert.True(t, mime.IsAllowed("text/plain", nil))
}

func TestReadUpload(t *testing.T) {
	upload, err := mime.ReadUpload(fileHeader(t, "room.png", pngHeader), 1024, allowed)
	require.NoError(t, err)

	assert.Equal(t, "image/png", upload.ContentType)
	assert.Equal(t, ".png", upload.Extension)
	assert.Equal(t, "room.png", upload.Filename)
	assert.Equal(t, pngHeader, upload.Data)
}

func TestReadUpload_SpoofedExtensionRejected(t *testing.T) {
	_, err := mime.ReadUpload(fileHeader(t, "photo.jpg", []byte("plain text pretending")), 1024, allowed)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestReadUpload_TooLarge(t *testing.T) {
	_, err := mime.ReadUpload(fileHeader(t, "big.gif", append(gifHeader, make([]byte, 64)...)), 16, allowed)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestReadUpload_Missing(t *testing.T) {
	_, err := mime.ReadUpload(nil, 1024, allowed)

	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestDetectFile(t *testing.T) {
	contentType, err := mime.DetectFile(fileHeader(t, "x.bin", gifHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", contentType)
}
