package netx

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartFile(t *testing.T) {
	body, ct, err := MultipartFile("file", "Rechnung März.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "Rechnung März.pdf", part.FileName())
	assert.Equal(t, "application/pdf", part.Header.Get("Content-Type"))

	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMultipartFile_DefaultContentType(t *testing.T) {
	body, ct, err := MultipartFile("file", "a.bin", "", []byte("x"))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	part, err := multipart.NewReader(body, params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantMsg string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "json error", status: http.StatusBadRequest, body: `{"error":"File too large"}`, wantErr: true, wantMsg: "File too large"},
		{name: "plain text", status: http.StatusBadGateway, body: "upstream down\n", wantErr: true, wantMsg: "upstream down"},
		{name: "empty body", status: http.StatusForbidden, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			resp, err := http.Get(ts.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			err = CheckStatus(resp)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.True(t, strings.HasPrefix(err.Error(), "request failed: "))
		})
	}
}

func TestFileNameFromDisposition(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"attachment; filename=Einkommenssteuer_2024_Komplett.zip", "Einkommenssteuer_2024_Komplett.zip"},
		{`inline; filename="invoice 1.pdf"`, "invoice 1.pdf"},
		{mime.FormatMediaType("attachment", map[string]string{"filename": "Übersicht.pdf"}), "Übersicht.pdf"},
		{"attachment", ""},
		{"", ""},
		{"; ;", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileNameFromDisposition(tt.header), tt.header)
	}
}
