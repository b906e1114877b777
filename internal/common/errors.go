// Package common defines shared constants and sentinel errors used across
// the storage, export and transport layers of taxvault. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Upload validation errors. Both are raised before any encryption work.
var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidName         = errors.New("invalid file or owner name")
)

// Storage and crypto errors.
var (
	ErrFileNotFound = errors.New("file not found")

	// ErrMalformedEnvelope is returned when a stored blob cannot hold the
	// fixed 44-byte envelope header.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrAuthenticationFailed covers tampering, a wrong password and
	// corrupted blobs alike; the AEAD cannot tell them apart.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// ErrAttachmentUnavailable marks a single export attachment that could not be
// located or decrypted. It never fails a whole export.
var ErrAttachmentUnavailable = errors.New("attachment unavailable")
