package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taxvault/internal/flagx"
	"github.com/dmitrijs2005/taxvault/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "10s" or
// integer nanoseconds via timex.Duration.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	EncryptionPassword string         `json:"encryption_password"`
	StorageBackend     string         `json:"storage_backend"`
	StorageRoot        string         `json:"storage_root"`
	MaxUploadSize      int64          `json:"max_upload_size"`
	AllowedMimeTypes   []string       `json:"allowed_mime_types"`
	AllowedOrigins     []string       `json:"allowed_origins"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by -c/-config onto config. Only fields
// present (non-zero) in the file replace the current values. A missing or
// invalid file is fatal and panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.EncryptionPassword, c.EncryptionPassword)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageRoot, c.StorageRoot)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if len(c.AllowedMimeTypes) > 0 {
		config.AllowedMimeTypes = c.AllowedMimeTypes
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
