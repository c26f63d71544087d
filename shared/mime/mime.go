// Package mime sniffs uploaded content. The client supplied Content-Type is never trusted.
package mime

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"roombooking/shared/failure"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Upload is a fully read, validated multipart file.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
	Filename    string
}

// Detect returns the sniffed media type without parameters, e.g. "image/png".
func Detect(content []byte) string {
	mediaType, _, _ := strings.Cut(mimetype.Detect(content).String(), ";")

	return strings.TrimSpace(mediaType)
}

// Extension returns the canonical extension for the sniffed type including the dot, e.g. ".png".
func Extension(content []byte) string {
	return mimetype.Detect(content).Extension()
}

// IsAllowed matches contentType against allowed, honoring mimetype aliases.
func IsAllowed(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}

	return mimetype.EqualsAny(contentType, allowed...)
}

// DetectFile sniffs the header of a multipart file without loading all of it.
func DetectFile(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}

	mediaType, _, _ := strings.Cut(detected.String(), ";")

	return mediaType, nil
}

// ReadUpload loads fileHeader, rejecting files above maxBytes or of a type outside allowed.
func ReadUpload(fileHeader *multipart.FileHeader, maxBytes int64, allowed []string) (*Upload, error) {
	if fileHeader == nil {
		return nil, failure.BadRequestFromString("file is required")
	}

	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, failure.BadRequestFromString(fmt.Sprintf("file size must not exceed %d bytes", maxBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}

	var buffer bytes.Buffer
	if _, err = buffer.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if maxBytes > 0 && int64(buffer.Len()) > maxBytes {
		return nil, failure.BadRequestFromString(fmt.Sprintf("file size must not exceed %d bytes", maxBytes))
	}

	data := buffer.Bytes()
	if len(data) == 0 {
		return nil, failure.BadRequestFromString("file is empty")
	}

	contentType := Detect(data)
	if !IsAllowed(contentType, allowed) {
		return nil, failure.BadRequestFromString(fmt.Sprintf("file type %s is not allowed, allowed types: %s", contentType, strings.Join(allowed, ", ")))
	}

	return &Upload{
		Data:        data,
		ContentType: contentType,
		Extension:   Extension(data),
		Filename:    fileHeader.Filename,
	}, nil
}
