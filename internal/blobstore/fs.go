package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/filex"
)

// FSBackend stores objects as files under root/ownerID/name.
type FSBackend struct {
	root string
}

func NewFSBackend(root string) *FSBackend {
	return &FSBackend{root: root}
}

func (b *FSBackend) path(ownerID, name string) string {
	return filepath.Join(b.root, ownerID, name)
}

func (b *FSBackend) EnsureOwnerSpace(ctx context.Context, ownerID string) error {
	_, err := filex.EnsureSubdDir(b.root, ownerID)
	return err
}

func (b *FSBackend) Put(ctx context.Context, ownerID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return filex.WriteFileAtomic(b.path(ownerID, name), data, 0o660)
}

func (b *FSBackend) Get(ctx context.Context, ownerID, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(ownerID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", ownerID, name, common.ErrFileNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (b *FSBackend) Exists(ctx context.Context, ownerID, name string) (bool, error) {
	fi, err := os.Stat(b.path(ownerID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

// List returns the regular files in the owner's directory. A missing
// directory is an empty namespace.
func (b *FSBackend) List(ctx context.Context, ownerID string) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(filepath.Join(b.root, ownerID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var result []ObjectInfo
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		result = append(result, ObjectInfo{Name: e.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return result, nil
}
