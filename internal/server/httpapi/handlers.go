package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"github.com/gorilla/mux"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart framing.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Success    bool   `json:"success"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	FileType   string `json:"fileType"`
	StoredName string `json:"storedName"`
}

type fileView struct {
	StoredName    string    `json:"storedName"`
	URL           string    `json:"url"`
	OriginalName  string    `json:"originalName"`
	FileType      string    `json:"fileType"`
	OriginalSize  int64     `json:"originalSize,omitempty"`
	EncryptedSize int64     `json:"encryptedSize"`
	UploadDate    time.Time `json:"uploadDate"`
}

type entryView struct {
	ID           string           `json:"id"`
	Type         models.EntryType `json:"type"`
	InvoiceDate  string           `json:"invoiceDate"`
	Counterparty string           `json:"counterparty"`
	Description  string           `json:"description"`
	Amount       int64            `json:"amount"`
	FileURL      string           `json:"fileUrl,omitempty"`
}

type attachRequest struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	limit := s.files.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.metrics.RecordUpload("rejected")
			s.errorResponse(w, http.StatusBadRequest, "File too large")
		default:
			s.errorResponse(w, http.StatusBadRequest, "No file provided")
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.metrics.RecordUpload("error")
		s.serviceError(w, r, err, "user", userID)
		return
	}

	res, err := s.files.Upload(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusBadRequest {
			s.metrics.RecordUpload("rejected")
		} else {
			s.metrics.RecordUpload("error")
		}
		s.serviceError(w, r, err, "user", userID, "file_name", header.Filename)
		return
	}

	s.metrics.RecordUpload("ok")
	s.jsonResponse(w, http.StatusOK, uploadResponse{
		Success:    true,
		FileName:   res.OriginalName,
		FileURL:    res.URL,
		FileType:   res.MimeType,
		StoredName: res.StoredName,
	})
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	files, err := s.files.List(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err, "user", userID)
		return
	}

	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{
			StoredName:    f.StoredName,
			URL:           f.URL,
			OriginalName:  f.OriginalName,
			FileType:      f.MimeType,
			OriginalSize:  f.OriginalSize,
			EncryptedSize: f.EncryptedSize,
			UploadDate:    f.UploadDate,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"files": views})
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	s.sendFile(w, r, "inline")
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	s.sendFile(w, r, "attachment")
}

// sendFile resolves {userId}/{fileName} and writes the plaintext with the
// given Content-Disposition type.
func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, disposition string) {
	userID, _ := UserIDFromContext(r.Context())
	vars := mux.Vars(r)
	ownerID, storedName := vars["userId"], vars["fileName"]

	f, err := s.files.Fetch(r.Context(), userID, ownerID, storedName)
	if err != nil {
		s.serviceError(w, r, err, "owner", ownerID, "stored_name", storedName)
		return
	}

	writeBinary(w, f.MimeType, disposition, f.Name, f.Data)
}

func (s *Server) exportTaxYear(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	year, ok := s.yearParam(w, r)
	if !ok {
		return
	}

	exp, err := s.exports.ExportTaxYear(r.Context(), userID, year)
	if err != nil {
		s.metrics.RecordExport("error", 0)
		s.serviceError(w, r, err, "user", userID, "year", year)
		return
	}

	s.metrics.RecordExport("ok", len(exp.Skipped))
	writeBinary(w, "application/zip", "attachment", exp.FileName, exp.Archive)
}

func (s *Server) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	year, ok := s.yearParam(w, r)
	if !ok {
		return
	}

	sum, err := s.ledger.Summary(r.Context(), userID, year)
	if err != nil {
		s.serviceError(w, r, err, "user", userID, "year", year)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"year":          year,
		"totalIncome":   sum.TotalIncome,
		"totalExpenses": sum.TotalExpenses,
		"netIncome":     sum.NetIncome,
	})
}

func (s *Server) dashboardMonthly(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	year, ok := s.yearParam(w, r)
	if !ok {
		return
	}

	months, err := s.ledger.Monthly(r.Context(), userID, year)
	if err != nil {
		s.serviceError(w, r, err, "user", userID, "year", year)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"year":             year,
		"monthlyBreakdown": months,
	})
}

func (s *Server) dashboardRecent(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.ledger.Recent(r.Context(), userID, limit)
	if err != nil {
		s.serviceError(w, r, err, "user", userID)
		return
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ID:           e.ID,
			Type:         e.Type,
			InvoiceDate:  e.InvoiceDate.Format(time.DateOnly),
			Counterparty: e.Counterparty,
			Description:  e.Description,
			Amount:       e.Amount,
			FileURL:      e.Attachment,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"entries": views})
}

func (s *Server) attachFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	vars := mux.Vars(r)

	kind, ok := models.ParseEntryType(vars["kind"])
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	att := models.Attachment{URL: req.FileURL, FileName: req.FileName, FileType: req.FileType}
	if err := s.ledger.AttachFile(r.Context(), userID, kind, vars["id"], att); err != nil {
		s.serviceError(w, r, err, "user", userID, "kind", kind, "id", vars["id"])
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// yearParam parses the {year} route variable, answering 400 itself when it
// is not a number.
func (s *Server) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid year")
		return 0, false
	}
	return year, true
}

func writeBinary(w http.ResponseWriter, contentType, disposition, fileName string, data []byte) {
	if contentType == "" {
		contentType = blobstore.MimeOctetStream
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if cd := mime.FormatMediaType(disposition, map[string]string{"filename": fileName}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	} else {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
