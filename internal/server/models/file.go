// Package models defines server-side data models persisted in the database.
package models

// Attachment links an uploaded file to a ledger row.
type Attachment struct {
	// URL is the logical reference returned by the upload ("/files/{owner}/{storedName}").
	URL string
	// FileName is the original client-side name.
	FileName string
	// FileType is the declared MIME type.
	FileType string
}
