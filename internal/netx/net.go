// Package netx holds small HTTP helpers shared by the taxvault client:
// multipart upload bodies, status checking against the API's JSON error
// shape and Content-Disposition parsing.
package netx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusError is a non-2xx response. Message is the API's "error" field when
// the body carried one, otherwise the raw (trimmed) body.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "request failed: " + e.Status
	}
	return fmt.Sprintf("request failed: %s; %s", e.Status, e.Message)
}

// MultipartFile builds a multipart/form-data body with one file part and
// returns it together with the request Content-Type.
func MultipartFile(field, fileName, contentType string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     field,
		"filename": fileName,
	}))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// CheckStatus returns nil for 2xx responses and a *StatusError otherwise.
// The body is consumed in the error case.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{Code: resp.StatusCode, Status: resp.Status}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		se.Message = body.Error
	} else {
		se.Message = strings.TrimSpace(string(b))
	}
	return se
}

// FileNameFromDisposition extracts the filename parameter of a
// Content-Disposition header ("" if absent or unparsable). RFC 2231 encoded
// names are decoded by mime.ParseMediaType.
func FileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
