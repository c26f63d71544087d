package validator_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/shared/failure"
	"roombooking/shared/validator"
)

type checkinRequest struct {
	LocationGPS string `json:"locationGps" validate:"required,max=100"`
}

type bookingRequest struct {
	RoomID      int64  `json:"roomId"      validate:"required,gt=0"`
	BookingDate string `json:"bookingDate" validate:"required,datetime=2006-01-02"`
	Purpose     string `json:"purpose"     validate:"max=500"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending approved rejected in_use done"`
}

type uploadRequest struct {
	File *multipart.FileHeader `form:"file" validate:"required,mimetypes=image/jpeg image/png,maxfilesize=0.001"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "valid", body: `{"roomId":1,"bookingDate":"2024-06-01","purpose":"Sync","status":"pending"}`},
		{name: "malformed", body: `{"roomId":`, wantMsg: "failed to decode request body"},
		{name: "missing room", body: `{"bookingDate":"2024-06-01"}`, wantMsg: "roomId is required"},
		{name: "bad date", body: `{"roomId":1,"bookingDate":"06/01/2024"}`, wantMsg: "bookingDate must match the format 2006-01-02"},
		{name: "bad status", body: `{"roomId":1,"bookingDate":"2024-06-01","status":"archived"}`, wantMsg: "status must be one of pending approved rejected in_use done"},
		{name: "purpose too long", body: `{"roomId":1,"bookingDate":"2024-06-01","purpose":"` + strings.Repeat("x", 501) + `"}`, wantMsg: "purpose must be at most 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req bookingRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateOptional(t *testing.T) {
	type noteRequest struct {
		Note string `json:"note" validate:"omitempty,max=5"`
	}

	tests := []struct {
		name     string
		body     io.Reader
		wantNote string
		wantErr  bool
	}{
		{name: "absent", body: nil},
		{name: "empty stream", body: strings.NewReader("")},
		{name: "note", body: strings.NewReader(`{"note":"ok"}`), wantNote: "ok"},
		{name: "malformed", body: strings.NewReader(`{"note":`), wantErr: true},
		{name: "too long", body: strings.NewReader(`{"note":"too long"}`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req noteRequest

			err := validator.ValidateOptional(tt.body, &req)
			if tt.wantErr {
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNote, req.Note)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, validator.ValidateStruct(&checkinRequest{LocationGPS: "1.23,4.56"}))

	err := validator.ValidateStruct(&checkinRequest{})
	require.Error(t, err)
	assert.Equal(t, "locationGps is required", err.Error())
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("ana@example.com", "email"))
	assert.Error(t, validator.ValidateVar("not-an-email", "email"))
	assert.NoError(t, validator.ValidateVar("", "empty"))
	assert.Error(t, validator.ValidateVar("x", "empty"))
}

func formFile(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "upload.png")
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

func TestFileRules(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	assert.NoError(t, validator.ValidateStruct(&uploadRequest{File: formFile(t, png)}))

	err := validator.ValidateStruct(&uploadRequest{File: formFile(t, []byte("just text"))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file must be one of the following types")

	err = validator.ValidateStruct(&uploadRequest{File: formFile(t, append(png, make([]byte, 2048)...))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file must not exceed 0.001 MB")
}
