package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/dbx"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/report"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"github.com/dmitrijs2005/taxvault/internal/server/repositories/repomanager"
)

const (
	minYear = 1900
	maxYear = 9999

	DefaultRecentLimit = 5
	maxRecentLimit     = 100
)

func checkYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: year %d", common.ErrBadRequest, year)
	}
	return nil
}

// LedgerService serves the dashboard aggregates and links uploads to ledger
// rows.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewLedgerService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *LedgerService {
	return &LedgerService{db: db, repomanager: rm, logger: logger.With("module", "ledger")}
}

// EntriesForYear reads the income and expense rows of one year from a
// single snapshot.
func (s *LedgerService) EntriesForYear(ctx context.Context, userID string, year int) ([]models.LedgerEntry, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}

	var entries []models.LedgerEntry
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		entries, err = s.repomanager.Ledger(tx).ListForYear(ctx, userID, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *LedgerService) Summary(ctx context.Context, userID string, year int) (report.Summary, error) {
	entries, err := s.EntriesForYear(ctx, userID, year)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(entries), nil
}

func (s *LedgerService) Monthly(ctx context.Context, userID string, year int) ([]report.MonthTotals, error) {
	entries, err := s.EntriesForYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return report.MonthlyBreakdown(entries, year), nil
}

// Recent returns the newest entries of both kinds. Non-positive limits fall
// back to DefaultRecentLimit.
func (s *LedgerService) Recent(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)
	return s.repomanager.Ledger(s.db).ListRecent(ctx, userID, limit)
}

// AttachFile points ledger row id at an uploaded file of the same user. The
// reference must live in userID's namespace.
func (s *LedgerService) AttachFile(ctx context.Context, userID string, kind models.EntryType, id string, att models.Attachment) error {
	if att.URL == "" {
		return fmt.Errorf("%w: empty file reference", common.ErrBadRequest)
	}
	if owner, _ := blobstore.ParseReference(att.URL); owner != userID {
		return common.ErrorForbidden
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Ledger(tx).AttachFile(ctx, kind, id, userID, att)
	})
	if err != nil {
		return fmt.Errorf("attach file to %s %s: %w", kind, id, err)
	}

	s.logger.Info(ctx, "attachment linked", "user", userID, "kind", string(kind), "id", id, "reference", att.URL)
	return nil
}
