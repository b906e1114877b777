package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageRoot = t.TempDir()
	return c
}

func TestNewBackend_FS(t *testing.T) {
	c := testConfig(t)

	b, err := newBackend(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.FSBackend{}, b)
}

func TestNewBackend_S3(t *testing.T) {
	orig := newS3Backend
	t.Cleanup(func() { newS3Backend = orig })

	var got blobstore.S3Config
	newS3Backend = func(ctx context.Context, c blobstore.S3Config) (blobstore.Backend, error) {
		got = c
		return blobstore.NewS3Backend(nil, c.Bucket), nil
	}

	c := testConfig(t)
	c.StorageBackend = config.StorageS3
	c.S3Bucket = "receipts"

	b, err := newBackend(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.S3Backend{}, b)
	assert.Equal(t, "receipts", got.Bucket)
	assert.Equal(t, c.S3BaseEndpoint, got.BaseEndpoint)
	assert.Equal(t, c.S3RootUser, got.RootUser)
}

func TestNewBackend_Errors(t *testing.T) {
	orig := newS3Backend
	t.Cleanup(func() { newS3Backend = orig })
	newS3Backend = func(ctx context.Context, c blobstore.S3Config) (blobstore.Backend, error) {
		return nil, errors.New("no credentials")
	}

	c := testConfig(t)
	c.StorageBackend = config.StorageS3
	_, err := newBackend(context.Background(), c)
	assert.ErrorContains(t, err, "s3 init error: no credentials")

	c.StorageBackend = "ftp"
	_, err = newBackend(context.Background(), c)
	assert.ErrorContains(t, err, `unknown storage backend "ftp"`)
}

func TestNewApp_OpenError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driverName)
		return nil, errors.New("bad dsn")
	}

	_, err := NewApp(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "db init error: bad dsn")
}
