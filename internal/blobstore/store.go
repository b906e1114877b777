package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/cryptox"
	"github.com/dmitrijs2005/taxvault/internal/logging"
)

// Limits bounds what Save accepts.
type Limits struct {
	MaxFileSize      int64
	AllowedMimeTypes []string
}

// DefaultLimits returns the 10 MiB limit and the default MIME allow-list.
func DefaultLimits() Limits {
	return Limits{MaxFileSize: common.MaxFileSize, AllowedMimeTypes: DefaultAllowedMimeTypes}
}

// SaveResult is returned by Save.
type SaveResult struct {
	StoredName   string
	URL          string
	OriginalName string
	MimeType     string
}

// ResolvedFile is the plaintext behind a logical reference.
//
// Metadata is nil when the sidecar is missing or unreadable (and always for
// legacy plain files); Name and MimeType are then derived from the stored
// name.
type ResolvedFile struct {
	Data       []byte
	StoredName string
	Name       string
	MimeType   string
	Encrypted  bool
	Metadata   *FileMetadata
}

// StoredFile is one listed encrypted blob.
type StoredFile struct {
	OwnerID       string
	StoredName    string
	URL           string
	OriginalName  string
	MimeType      string
	OriginalSize  int64
	EncryptedSize int64
	UploadDate    time.Time
	HasMetadata   bool
}

// Store encrypts, persists and resolves files per owner.
type Store struct {
	backend Backend
	cipher  *cryptox.Cipher
	limits  Limits
	allowed map[string]struct{}
	logger  logging.Logger
	now     func() time.Time
}

// NewStore wires a Store. The cipher carries the shared password; nothing in
// this package reads it from global state.
func NewStore(backend Backend, cipher *cryptox.Cipher, limits Limits, logger logging.Logger) *Store {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = common.MaxFileSize
	}
	if len(limits.AllowedMimeTypes) == 0 {
		limits.AllowedMimeTypes = DefaultAllowedMimeTypes
	}

	allowed := make(map[string]struct{}, len(limits.AllowedMimeTypes))
	for _, t := range limits.AllowedMimeTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}

	return &Store{
		backend: backend,
		cipher:  cipher,
		limits:  limits,
		allowed: allowed,
		logger:  logger.With("module", "blobstore"),
		now:     time.Now,
	}
}

// Limits returns the limits the store enforces.
func (s *Store) Limits() Limits {
	return s.limits
}

// EnsureOwnerSpace creates the owner's namespace if absent.
func (s *Store) EnsureOwnerSpace(ctx context.Context, ownerID string) error {
	if err := checkNames(ownerID, ""); err != nil {
		return err
	}
	return s.backend.EnsureOwnerSpace(ctx, ownerID)
}

// Validate applies the size and type checks of Save without storing anything.
func (s *Store) Validate(size int64, mimeType string) error {
	if size > s.limits.MaxFileSize {
		return fmt.Errorf("%w: %d bytes, limit %d", common.ErrFileTooLarge, size, s.limits.MaxFileSize)
	}
	if _, ok := s.allowed[strings.ToLower(mimeType)]; !ok {
		return fmt.Errorf("%w: %q", common.ErrUnsupportedFileType, mimeType)
	}
	return nil
}

// Save validates, encrypts and persists data, then writes the metadata
// sidecar. A failed sidecar write is logged and does not fail the upload.
func (s *Store) Save(ctx context.Context, ownerID, originalName, mimeType string, data []byte) (*SaveResult, error) {
	if err := s.Validate(int64(len(data)), mimeType); err != nil {
		return nil, err
	}
	if err := checkNames(ownerID, ""); err != nil {
		return nil, err
	}

	originalName = sanitizeOriginalName(originalName)
	uploadedAt := s.now().UTC()
	storedName := StoredName(uploadedAt, originalName)

	if err := s.backend.EnsureOwnerSpace(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("ensure owner space: %w", err)
	}

	blob, err := s.cipher.EncryptBytes(data)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	if err := s.backend.Put(ctx, ownerID, storedName, blob); err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}

	meta := &FileMetadata{
		OriginalName:  originalName,
		FileType:      mimeType,
		OriginalSize:  int64(len(data)),
		EncryptedSize: int64(len(blob)),
		UploadDate:    uploadedAt,
	}
	if err := s.saveMetadata(ctx, ownerID, storedName, meta); err != nil {
		s.logger.Warn(ctx, "metadata sidecar not written", "owner", ownerID, "stored_name", storedName, "error", err)
	}

	s.logger.Info(ctx, "file stored", "owner", ownerID, "stored_name", storedName, "size", len(data))

	return &SaveResult{
		StoredName:   storedName,
		URL:          URL(ownerID, storedName),
		OriginalName: originalName,
		MimeType:     mimeType,
	}, nil
}

// Resolve returns the plaintext behind storedName. A name without the
// encrypted suffix resolves to the suffixed blob when one exists, and to the
// legacy plain file otherwise.
func (s *Store) Resolve(ctx context.Context, ownerID, storedName string) (*ResolvedFile, error) {
	if storedName == "" {
		return nil, fmt.Errorf("empty name: %w", common.ErrInvalidName)
	}
	if err := checkNames(ownerID, storedName); err != nil {
		return nil, err
	}

	name := storedName
	encrypted := strings.HasSuffix(name, common.EncryptedSuffix)
	if !encrypted {
		ok, err := s.backend.Exists(ctx, ownerID, name+common.EncryptedSuffix)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", name, err)
		}
		if ok {
			name += common.EncryptedSuffix
			encrypted = true
		}
	}

	raw, err := s.backend.Get(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	if !encrypted {
		return &ResolvedFile{
			Data:       raw,
			StoredName: name,
			Name:       FallbackName(name),
			MimeType:   MimeTypeFromName(name),
		}, nil
	}

	plaintext, err := s.cipher.DecryptBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", name, err)
	}

	res := &ResolvedFile{
		Data:       plaintext,
		StoredName: name,
		Name:       FallbackName(name),
		MimeType:   MimeTypeFromName(name),
		Encrypted:  true,
	}
	if meta, ok := s.loadMetadata(ctx, ownerID, name); ok {
		res.Metadata = meta
		if meta.OriginalName != "" {
			res.Name = meta.OriginalName
		}
		if meta.FileType != "" {
			res.MimeType = meta.FileType
		}
	}
	return res, nil
}

// List returns the owner's encrypted blobs sorted by stored name. Legacy
// plain files and sidecars are not listed.
func (s *Store) List(ctx context.Context, ownerID string) ([]StoredFile, error) {
	if err := checkNames(ownerID, ""); err != nil {
		return nil, err
	}

	objects, err := s.backend.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ownerID, err)
	}

	result := make([]StoredFile, 0, len(objects))
	for _, o := range objects {
		if !strings.HasSuffix(o.Name, common.EncryptedSuffix) {
			continue
		}

		f := StoredFile{
			OwnerID:       ownerID,
			StoredName:    o.Name,
			URL:           URL(ownerID, o.Name),
			OriginalName:  FallbackName(o.Name),
			MimeType:      MimeTypeFromName(o.Name),
			EncryptedSize: o.Size,
			OriginalSize:  max(o.Size-cryptox.HeaderSize, 0),
			UploadDate:    o.ModTime,
		}
		if ts, ok := uploadTimeFromName(o.Name); ok {
			f.UploadDate = ts
		}

		if meta, ok := s.loadMetadata(ctx, ownerID, o.Name); ok {
			f.HasMetadata = true
			if meta.OriginalName != "" {
				f.OriginalName = meta.OriginalName
			}
			if meta.FileType != "" {
				f.MimeType = meta.FileType
			}
			f.OriginalSize = meta.OriginalSize
			f.EncryptedSize = meta.EncryptedSize
			if !meta.UploadDate.IsZero() {
				f.UploadDate = meta.UploadDate
			}
		}

		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].StoredName < result[j].StoredName })
	return result, nil
}
