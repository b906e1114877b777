// Package ledger reads income and expense rows and links uploaded files to
// them.
package ledger

import (
	"context"

	"github.com/dmitrijs2005/taxvault/internal/server/models"
)

type Repository interface {
	// ListForYear returns the owner's income rows, then expense rows, whose
	// invoice date lies in [Jan 1 year, Jan 1 year+1).
	ListForYear(ctx context.Context, ownerID string, year int) ([]models.LedgerEntry, error)
	// ListRecent returns up to limit rows of both kinds, newest first.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]models.LedgerEntry, error)
	// AttachFile stores the attachment on row id of the given kind. It
	// returns common.ErrorNotFound when the row is missing or owned by
	// someone else. Run it inside a transaction.
	AttachFile(ctx context.Context, kind models.EntryType, id, ownerID string, att models.Attachment) error
}
