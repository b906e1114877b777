package client

import (
	"context"
	"time"
)

type Client interface {
	Upload(ctx context.Context, fileName, mimeType string, data []byte) (*UploadResult, error)
	ListFiles(ctx context.Context) ([]FileInfo, error)
	Download(ctx context.Context, ref string) (*Download, error)
	ExportTaxYear(ctx context.Context, year int) (*Download, error)
	Summary(ctx context.Context, year int) (*Summary, error)
	Monthly(ctx context.Context, year int) ([]MonthTotals, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Attach(ctx context.Context, kind, id string, att Attachment) error
}

type UploadResult struct {
	Success    bool   `json:"success"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	FileType   string `json:"fileType"`
	StoredName string `json:"storedName"`
}

type FileInfo struct {
	StoredName    string    `json:"storedName"`
	URL           string    `json:"url"`
	OriginalName  string    `json:"originalName"`
	FileType      string    `json:"fileType"`
	OriginalSize  int64     `json:"originalSize"`
	EncryptedSize int64     `json:"encryptedSize"`
	UploadDate    time.Time `json:"uploadDate"`
}

// Download is a binary response (decrypted file or export archive). Name
// comes from Content-Disposition.
type Download struct {
	Name        string
	ContentType string
	Data        []byte
}

type Summary struct {
	Year          int   `json:"year"`
	TotalIncome   int64 `json:"totalIncome"`
	TotalExpenses int64 `json:"totalExpenses"`
	NetIncome     int64 `json:"netIncome"`
}

type MonthTotals struct {
	Month    int   `json:"month"`
	Income   int64 `json:"income"`
	Expenses int64 `json:"expenses"`
	Net      int64 `json:"net"`
}

type Entry struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	InvoiceDate  string `json:"invoiceDate"`
	Counterparty string `json:"counterparty"`
	Description  string `json:"description"`
	Amount       int64  `json:"amount"`
	FileURL      string `json:"fileUrl,omitempty"`
}

type Attachment struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}
