package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-k", "file-pass",
				"-m", "s3", "-f", "/srv/files", "-l", "2048", "-o", "https://a.example, https://b.example",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "eu-central-1", "-e", "http://endpoint",
			},
			expected: &Config{
				EndpointAddrHTTP:   "127.0.0.1:9090",
				DatabaseDSN:        "db",
				SecretKey:          "secret",
				EncryptionPassword: "file-pass",
				StorageBackend:     "s3",
				StorageRoot:        "/srv/files",
				MaxUploadSize:      2048,
				AllowedOrigins:     []string{"https://a.example", "https://b.example"},
				S3RootUser:         "user",
				S3RootPassword:     "password",
				S3Bucket:           "bucket",
				S3Region:           "eu-central-1",
				S3BaseEndpoint:     "http://endpoint",
			},
		},
		{
			name: "unrelated flags are ignored",
			args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{
				EndpointAddrHTTP: ":1",
				ShutdownTimeout:  time.Second,
			},
		},
		{
			name:        "bad integer panics",
			args:        []string{"cmd", "-l", "many"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{ShutdownTimeout: time.Second}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			if tt.expected.ShutdownTimeout == 0 {
				tt.expected.ShutdownTimeout = time.Second
			}
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
