package common

const (
	// AuthorizationHeaderName carries the bearer access token on HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// EncryptedSuffix is appended to every encrypted blob name.
	EncryptedSuffix = ".encrypted"

	// MetadataSuffix is appended to a blob name to form its sidecar name.
	MetadataSuffix = ".meta"

	// MaxFileSize is the default upload limit (10 MiB).
	MaxFileSize = 10 * 1024 * 1024
)
