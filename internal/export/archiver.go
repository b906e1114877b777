// Package export bundles the yearly report and the decrypted attachments of
// the listed ledger entries into one ZIP archive.
package export

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"golang.org/x/sync/errgroup"
)

const (
	// ReportEntryName is the archive entry holding the PDF overview.
	ReportEntryName = "Einkommenssteuer_Übersicht.pdf"

	attachmentDir        = "attachments/"
	maxDescriptionLength = 50
	defaultConcurrency   = 4
)

// ArchiveName is the download filename of a yearly export.
func ArchiveName(year int) string {
	return fmt.Sprintf("Einkommenssteuer_%d_Komplett.zip", year)
}

// FileResolver is the part of the blob store the archiver needs.
type FileResolver interface {
	Resolve(ctx context.Context, ownerID, storedName string) (*blobstore.ResolvedFile, error)
}

// SkippedAttachment records an attachment left out of the archive.
type SkippedAttachment struct {
	EntryID   string
	Reference string
	Err       error
}

// Bundle is an in-memory export. It is never persisted.
type Bundle struct {
	Archive  []byte
	Included int
	Skipped  []SkippedAttachment
}

type Archiver struct {
	files       FileResolver
	logger      logging.Logger
	concurrency int
	now         func() time.Time
}

func NewArchiver(files FileResolver, logger logging.Logger) *Archiver {
	return &Archiver{
		files:       files,
		logger:      logger.With("module", "export"),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
}

// outcome is the result of resolving one attachment; err is a value, not a
// reason to stop the group.
type outcome struct {
	entry models.LedgerEntry
	file  *blobstore.ResolvedFile
	err   error
}

// BuildExport writes report first, then one entry per resolvable attachment
// in the order of entries. Attachments are resolved concurrently; a failed
// one is logged and listed in Bundle.Skipped. Cancellation of ctx aborts the
// whole export.
func (a *Archiver) BuildExport(ctx context.Context, entries []models.LedgerEntry, ownerID string, report []byte) (*Bundle, error) {
	var attached []models.LedgerEntry
	for _, e := range entries {
		if e.HasAttachment() {
			attached = append(attached, e)
		}
	}

	outcomes := make([]outcome, len(attached))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, e := range attached {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := a.resolve(gctx, ownerID, e.Attachment)
			outcomes[i] = outcome{entry: e, file: file, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve attachments: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve attachments: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	modified := a.now()
	if err := writeEntry(zw, ReportEntryName, modified, report); err != nil {
		return nil, err
	}

	bundle := &Bundle{}
	for i, o := range outcomes {
		if o.err != nil {
			a.logger.Warn(ctx, "attachment skipped",
				"owner", ownerID, "entry_id", o.entry.ID, "reference", o.entry.Attachment, "error", o.err)
			bundle.Skipped = append(bundle.Skipped, SkippedAttachment{
				EntryID:   o.entry.ID,
				Reference: o.entry.Attachment,
				Err:       o.err,
			})
			continue
		}

		name := AttachmentEntryName(o.entry, i+1, o.file.Name)
		if err := writeEntry(zw, name, modified, o.file.Data); err != nil {
			return nil, err
		}
		bundle.Included++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	bundle.Archive = buf.Bytes()
	a.logger.Info(ctx, "export built",
		"owner", ownerID, "included", bundle.Included, "skipped", len(bundle.Skipped), "bytes", len(bundle.Archive))
	return bundle, nil
}

// resolve maps a logical reference onto the owner's namespace. References
// into another owner's files are refused.
func (a *Archiver) resolve(ctx context.Context, ownerID, ref string) (*blobstore.ResolvedFile, error) {
	refOwner, storedName := blobstore.ParseReference(ref)
	if refOwner != "" && refOwner != ownerID {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrAttachmentUnavailable, ref, common.ErrorForbidden)
	}

	file, err := a.files.Resolve(ctx, ownerID, storedName)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", common.ErrAttachmentUnavailable, ref, err)
	}
	return file, nil
}

func writeEntry(zw *zip.Writer, name string, modified time.Time, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// AttachmentEntryName builds "attachments/{type}_{n}_{description}{ext}".
// n is the 1-based position among entries that carry an attachment and ext
// comes from the resolved original file name.
func AttachmentEntryName(e models.LedgerEntry, n int, originalName string) string {
	return fmt.Sprintf("%s%s_%d_%s%s", attachmentDir, e.Type, n, SanitizeDescription(e.Description), path.Ext(originalName))
}

// SanitizeDescription keeps ASCII letters, digits and whitespace and cuts the
// result to 50 characters.
func SanitizeDescription(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if isKept(r) {
			out = append(out, r)
		}
	}
	if len(out) > maxDescriptionLength {
		out = out[:maxDescriptionLength]
	}
	return string(out)
}

func isKept(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
		return true
	}
	return false
}
