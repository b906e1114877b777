// Package blobstore persists encrypted file blobs in an owner-partitioned
// namespace and resolves logical file references back to plaintext.
//
// The Store never checks who is asking: callers must make sure the owner id
// they pass belongs to the authenticated user.
package blobstore

import (
	"context"
	"time"
)

// ObjectInfo describes one object in an owner's namespace.
type ObjectInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Backend is the raw object storage under a Store. Names are single path
// segments inside the owner's namespace; Get returns common.ErrFileNotFound
// for missing objects.
type Backend interface {
	EnsureOwnerSpace(ctx context.Context, ownerID string) error
	Put(ctx context.Context, ownerID, name string, data []byte) error
	Get(ctx context.Context, ownerID, name string) ([]byte, error)
	Exists(ctx context.Context, ownerID, name string) (bool, error)
	List(ctx context.Context, ownerID string) ([]ObjectInfo, error)
}
