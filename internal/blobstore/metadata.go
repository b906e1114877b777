package blobstore

import (
	"context"
	"encoding/json"
	"time"
)

// FileMetadata is the sidecar record persisted next to every encrypted blob.
type FileMetadata struct {
	OriginalName  string    `json:"originalName"`
	FileType      string    `json:"fileType"`
	OriginalSize  int64     `json:"originalSize"`
	EncryptedSize int64     `json:"encryptedSize"`
	UploadDate    time.Time `json:"uploadDate"`
}

func (s *Store) saveMetadata(ctx context.Context, ownerID, storedName string, m *FileMetadata) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, ownerID, MetadataName(storedName), data)
}

// loadMetadata returns the sidecar for storedName. Metadata is best-effort:
// a missing or unparsable sidecar yields ok == false, never an error.
func (s *Store) loadMetadata(ctx context.Context, ownerID, storedName string) (m *FileMetadata, ok bool) {
	data, err := s.backend.Get(ctx, ownerID, MetadataName(storedName))
	if err != nil {
		return nil, false
	}

	m = &FileMetadata{}
	if err := json.Unmarshal(data, m); err != nil {
		s.logger.Debug(ctx, "unparsable metadata sidecar", "owner", ownerID, "stored_name", storedName, "error", err)
		return nil, false
	}
	return m, true
}
