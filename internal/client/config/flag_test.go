package config

import (
	"flag"
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

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://vault:8080", "-t", "tok", "-i", "10"}, expectPanic: false,
			expected: &Config{ServerURL: "http://vault:8080", AccessToken: "tok", RequestTimeout: 10 * time.Second}},
		{name: "Test2 foreign flags ignored", args: []string{"cmd", "-config", "x.json", "-a", "http://vault:8080"}, expectPanic: false,
			expected: &Config{ServerURL: "http://vault:8080"}},
		{name: "Test3 incorrect timeout", args: []string{"cmd", "-a", "http://vault:8080", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
