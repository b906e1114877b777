package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/logging"
)

// FileStore is the blob store as seen by the file endpoints.
type FileStore interface {
	Limits() blobstore.Limits
	Save(ctx context.Context, ownerID, originalName, mimeType string, data []byte) (*blobstore.SaveResult, error)
	Resolve(ctx context.Context, ownerID, storedName string) (*blobstore.ResolvedFile, error)
	List(ctx context.Context, ownerID string) ([]blobstore.StoredFile, error)
}

type FileService struct {
	store  FileStore
	logger logging.Logger
}

func NewFileService(store FileStore, logger logging.Logger) *FileService {
	return &FileService{store: store, logger: logger.With("module", "files")}
}

// MaxFileSize is the upload limit; transports use it to cap request bodies.
func (s *FileService) MaxFileSize() int64 {
	return s.store.Limits().MaxFileSize
}

func (s *FileService) Upload(ctx context.Context, userID, originalName, mimeType string, data []byte) (*blobstore.SaveResult, error) {
	res, err := s.store.Save(ctx, userID, originalName, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", originalName, err)
	}
	return res, nil
}

// Fetch resolves ownerID/storedName for userID. Only the owner may read a
// file.
func (s *FileService) Fetch(ctx context.Context, userID, ownerID, storedName string) (*blobstore.ResolvedFile, error) {
	if userID != ownerID {
		s.logger.Warn(ctx, "cross-owner file access refused", "user", userID, "owner", ownerID, "stored_name", storedName)
		return nil, common.ErrorForbidden
	}

	f, err := s.store.Resolve(ctx, ownerID, storedName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", storedName, err)
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, userID string) ([]blobstore.StoredFile, error) {
	return s.store.List(ctx, userID)
}
