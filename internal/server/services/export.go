package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taxvault/internal/export"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
)

// EntrySource yields the ledger rows of one tax year.
type EntrySource interface {
	EntriesForYear(ctx context.Context, userID string, year int) ([]models.LedgerEntry, error)
}

type ReportGenerator interface {
	Generate(entries []models.LedgerEntry, year int, ownerID string) ([]byte, error)
}

type BundleBuilder interface {
	BuildExport(ctx context.Context, entries []models.LedgerEntry, ownerID string, report []byte) (*export.Bundle, error)
}

// TaxExport is a finished yearly export ready for download.
type TaxExport struct {
	FileName string
	*export.Bundle
}

type ExportService struct {
	entries   EntrySource
	generator ReportGenerator
	archiver  BundleBuilder
	logger    logging.Logger
}

func NewExportService(entries EntrySource, generator ReportGenerator, archiver BundleBuilder, logger logging.Logger) *ExportService {
	return &ExportService{
		entries:   entries,
		generator: generator,
		archiver:  archiver,
		logger:    logger.With("module", "export"),
	}
}

// ExportTaxYear loads the year's entries, renders the report and bundles it
// with the attachments.
func (s *ExportService) ExportTaxYear(ctx context.Context, userID string, year int) (*TaxExport, error) {
	entries, err := s.entries.EntriesForYear(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	pdf, err := s.generator.Generate(entries, year, userID)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	bundle, err := s.archiver.BuildExport(ctx, entries, userID, pdf)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	s.logger.Info(ctx, "tax export ready", "user", userID, "year", year,
		"entries", len(entries), "attachments", bundle.Included, "skipped", len(bundle.Skipped))

	return &TaxExport{FileName: export.ArchiveName(year), Bundle: bundle}, nil
}
