package blobstore

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/common"
)

// Allowed upload MIME types.
const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	MimeOctetStream = "application/octet-stream"
)

// DefaultAllowedMimeTypes is the upload allow-list: PDF, JPEG, PNG, GIF, DOC, DOCX.
var DefaultAllowedMimeTypes = []string{MimePDF, MimeJPEG, MimePNG, MimeGIF, MimeDOC, MimeDOCX}

var extensionMimeTypes = map[string]string{
	".pdf":  MimePDF,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".png":  MimePNG,
	".gif":  MimeGIF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
}

// MimeTypeFromName guesses a content type from the file extension, ignoring
// a trailing encrypted suffix. Unknown extensions map to octet-stream.
func MimeTypeFromName(name string) string {
	name = strings.TrimSuffix(name, common.EncryptedSuffix)
	if t, ok := extensionMimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return MimeOctetStream
}

// StoredName builds "{unixMillis}-{originalName}.encrypted".
func StoredName(at time.Time, originalName string) string {
	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), originalName, common.EncryptedSuffix)
}

// MetadataName returns the sidecar name for a stored blob.
func MetadataName(storedName string) string {
	return storedName + common.MetadataSuffix
}

// URL returns the logical reference handed out for a stored file.
func URL(ownerID, storedName string) string {
	return "/files/" + ownerID + "/" + storedName
}

// ParseReference extracts the owner id and stored name from a logical
// reference such as "/files/{owner}/{name}" or "/api/files/{owner}/{name}".
// A bare name yields an empty owner. The last segment is taken verbatim:
// stored names may contain '#' or '?' from the original upload name.
func ParseReference(ref string) (ownerID, storedName string) {
	ref = strings.TrimSpace(ref)
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	storedName = parts[len(parts)-1]
	if len(parts) >= 2 {
		ownerID = parts[len(parts)-2]
	}
	return ownerID, storedName
}

// FallbackName derives a display name from a stored name when no metadata
// is available: the encrypted suffix and the upload timestamp prefix go.
func FallbackName(storedName string) string {
	name := strings.TrimSuffix(storedName, common.EncryptedSuffix)
	if ts, rest, ok := strings.Cut(name, "-"); ok && rest != "" {
		if _, err := strconv.ParseInt(ts, 10, 64); err == nil {
			return rest
		}
	}
	return name
}

// uploadTimeFromName reads the millisecond timestamp prefix of a stored name.
func uploadTimeFromName(storedName string) (time.Time, bool) {
	ts, _, ok := strings.Cut(storedName, "-")
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// sanitizeOriginalName keeps only the last path element of a client-supplied
// file name.
func sanitizeOriginalName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "file"
	}
	return name
}

// validSegment reports whether s can be used as a single path element.
func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

func checkNames(ownerID, storedName string) error {
	if !validSegment(ownerID) {
		return fmt.Errorf("owner %q: %w", ownerID, common.ErrInvalidName)
	}
	if storedName != "" && !validSegment(storedName) {
		return fmt.Errorf("name %q: %w", storedName, common.ErrInvalidName)
	}
	return nil
}
