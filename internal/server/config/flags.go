package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/taxvault/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   file encryption password
//	-m string   storage backend: fs | s3
//	-f string   storage root directory (fs backend)
//	-l int      max upload size, bytes
//	-o string   allowed CORS origins, comma separated
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and flags of
// other components do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-m", "-f", "-l", "-o", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.EncryptionPassword, "k", config.EncryptionPassword, "file encryption password")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (fs|s3)")
	fs.StringVar(&config.StorageRoot, "f", config.StorageRoot, "storage root directory")
	fs.Int64Var(&config.MaxUploadSize, "l", config.MaxUploadSize, "max upload size in bytes")

	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins (comma separated)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedOrigins = flagx.SplitList(*origins)
}
