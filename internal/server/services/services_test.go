package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/cryptox"
	"github.com/dmitrijs2005/taxvault/internal/dbx"
	"github.com/dmitrijs2005/taxvault/internal/export"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/report"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"github.com/dmitrijs2005/taxvault/internal/server/repositories/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeLedgerRepo struct {
	entries   []models.LedgerEntry
	listErr   error
	gotYear   int
	gotLimit  int
	attachErr error
	attached  *models.Attachment
}

func (f *fakeLedgerRepo) ListForYear(ctx context.Context, ownerID string, year int) ([]models.LedgerEntry, error) {
	f.gotYear = year
	return f.entries, f.listErr
}

func (f *fakeLedgerRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.LedgerEntry, error) {
	f.gotLimit = limit
	return f.entries, f.listErr
}

func (f *fakeLedgerRepo) AttachFile(ctx context.Context, kind models.EntryType, id, ownerID string, att models.Attachment) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = &att
	return nil
}

type fakeRepoManager struct {
	repo *fakeLedgerRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Ledger(dbx.DBTX) ledger.Repository            { return m.repo }

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var sampleEntries = []models.LedgerEntry{
	{ID: "i1", Type: models.EntryIncome, InvoiceDate: at(2024, 1, 10), Amount: 10000},
	{ID: "i2", Type: models.EntryIncome, InvoiceDate: at(2024, 2, 10), Amount: 5000},
	{ID: "e1", Type: models.EntryExpense, InvoiceDate: at(2024, 2, 20), Amount: 3000},
}

// --- FileService ---

func newFileService(t *testing.T) *FileService {
	t.Helper()
	store := blobstore.NewStore(blobstore.NewFSBackend(t.TempDir()), cryptox.NewCipher("pw"), blobstore.DefaultLimits(), logging.NewNopLogger())
	return NewFileService(store, logging.NewNopLogger())
}

func TestFileService_UploadFetchList(t *testing.T) {
	s := newFileService(t)
	ctx := context.Background()

	res, err := s.Upload(ctx, "u1", "beleg.pdf", blobstore.MimePDF, []byte("pdf"))
	require.NoError(t, err)

	f, err := s.Fetch(ctx, "u1", "u1", res.StoredName)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), f.Data)
	assert.Equal(t, "beleg.pdf", f.Name)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, int64(common.MaxFileSize), s.MaxFileSize())
}

func TestFileService_UploadValidation(t *testing.T) {
	s := newFileService(t)

	_, err := s.Upload(context.Background(), "u1", "a.txt", "text/plain", []byte("x"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFileType)
}

func TestFileService_FetchOtherOwnerForbidden(t *testing.T) {
	s := newFileService(t)

	_, err := s.Fetch(context.Background(), "u1", "u2", "x.pdf")
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestFileService_FetchMissing(t *testing.T) {
	s := newFileService(t)

	_, err := s.Fetch(context.Background(), "u1", "u1", "missing.pdf")
	assert.ErrorIs(t, err, common.ErrFileNotFound)
}

// --- LedgerService ---

func TestLedgerService_SummaryAndMonthly(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeLedgerRepo{entries: sampleEntries}
	s := NewLedgerService(db, &fakeRepoManager{repo: repo}, logging.NewNopLogger())

	// каждый запрос за год читает в своей read-only транзакции
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	sum, err := s.Summary(context.Background(), "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, report.Summary{TotalIncome: 15000, TotalExpenses: 3000, NetIncome: 12000}, sum)
	assert.Equal(t, 2024, repo.gotYear)

	months, err := s.Monthly(context.Background(), "u1", 2024)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, int64(5000), months[1].Income)
	assert.Equal(t, int64(2000), months[1].Net)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_InvalidYear(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewLedgerService(db, &fakeRepoManager{repo: &fakeLedgerRepo{}}, logging.NewNopLogger())

	_, err := s.Summary(context.Background(), "u1", 12)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestLedgerService_RepoError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewLedgerService(db, &fakeRepoManager{repo: &fakeLedgerRepo{listErr: errors.New("db down")}}, logging.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Monthly(context.Background(), "u1", 2024)
	assert.EqualError(t, err, "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_RecentLimits(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeLedgerRepo{}
	s := NewLedgerService(db, &fakeRepoManager{repo: repo}, logging.NewNopLogger())

	_, err := s.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecentLimit, repo.gotLimit)

	_, err = s.Recent(context.Background(), "u1", 1000)
	require.NoError(t, err)
	assert.Equal(t, maxRecentLimit, repo.gotLimit)
}

func TestLedgerService_AttachFile_CommitsTransaction(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := &fakeLedgerRepo{}
	s := NewLedgerService(db, &fakeRepoManager{repo: repo}, logging.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectCommit()

	att := models.Attachment{URL: "/files/u1/1-a.pdf.encrypted", FileName: "a.pdf", FileType: blobstore.MimePDF}
	require.NoError(t, s.AttachFile(context.Background(), "u1", models.EntryIncome, "i1", att))
	require.NotNil(t, repo.attached)
	assert.Equal(t, att, *repo.attached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_AttachFile_NotFoundRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewLedgerService(db, &fakeRepoManager{repo: &fakeLedgerRepo{attachErr: common.ErrorNotFound}}, logging.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.AttachFile(context.Background(), "u1", models.EntryExpense, "e9", models.Attachment{URL: "/files/u1/x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_AttachFile_ForeignReference(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewLedgerService(db, &fakeRepoManager{repo: &fakeLedgerRepo{}}, logging.NewNopLogger())

	err := s.AttachFile(context.Background(), "u1", models.EntryIncome, "i1", models.Attachment{URL: "/files/u2/x.pdf.encrypted"})
	assert.ErrorIs(t, err, common.ErrorForbidden)

	err = s.AttachFile(context.Background(), "u1", models.EntryIncome, "i1", models.Attachment{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

// --- ExportService ---

type fakeEntrySource struct {
	entries []models.LedgerEntry
	err     error
}

func (f *fakeEntrySource) EntriesForYear(ctx context.Context, userID string, year int) ([]models.LedgerEntry, error) {
	return f.entries, f.err
}

type fakeGenerator struct {
	gotYear int
	err     error
}

func (f *fakeGenerator) Generate(entries []models.LedgerEntry, year int, ownerID string) ([]byte, error) {
	f.gotYear = year
	return []byte("%PDF-fake"), f.err
}

type fakeArchiver struct {
	gotReport []byte
	err       error
}

func (f *fakeArchiver) BuildExport(ctx context.Context, entries []models.LedgerEntry, ownerID string, rep []byte) (*export.Bundle, error) {
	f.gotReport = rep
	if f.err != nil {
		return nil, f.err
	}
	return &export.Bundle{Archive: []byte("PK"), Included: 1}, nil
}

func TestExportService_ExportTaxYear(t *testing.T) {
	gen := &fakeGenerator{}
	arch := &fakeArchiver{}
	s := NewExportService(&fakeEntrySource{entries: sampleEntries}, gen, arch, logging.NewNopLogger())

	out, err := s.ExportTaxYear(context.Background(), "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "Einkommenssteuer_2024_Komplett.zip", out.FileName)
	assert.Equal(t, []byte("PK"), out.Archive)
	assert.Equal(t, 1, out.Included)
	assert.Equal(t, 2024, gen.gotYear)
	assert.Equal(t, []byte("%PDF-fake"), arch.gotReport)
}

func TestExportService_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewExportService(&fakeEntrySource{err: boom}, &fakeGenerator{}, &fakeArchiver{}, logging.NewNopLogger()).
		ExportTaxYear(context.Background(), "u1", 2024)
	assert.ErrorIs(t, err, boom)

	_, err = NewExportService(&fakeEntrySource{}, &fakeGenerator{err: boom}, &fakeArchiver{}, logging.NewNopLogger()).
		ExportTaxYear(context.Background(), "u1", 2024)
	assert.ErrorIs(t, err, boom)

	_, err = NewExportService(&fakeEntrySource{}, &fakeGenerator{}, &fakeArchiver{err: context.Canceled}, logging.NewNopLogger()).
		ExportTaxYear(context.Background(), "u1", 2024)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewStore(blobstore.NewFSBackend(t.TempDir()), cryptox.NewCipher("pw"), blobstore.DefaultLimits(), logging.NewNopLogger())
	res, err := store.Save(ctx, "u1", "a.pdf", blobstore.MimePDF, []byte("a"))
	require.NoError(t, err)

	entries := []models.LedgerEntry{
		{ID: "i1", Type: models.EntryIncome, InvoiceDate: at(2024, 1, 1), Description: "Honorar", Amount: 100, Attachment: res.URL},
	}
	s := NewExportService(&fakeEntrySource{entries: entries},
		report.NewGenerator(), export.NewArchiver(store, logging.NewNopLogger()), logging.NewNopLogger())

	out, err := s.ExportTaxYear(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Included)
	assert.Empty(t, out.Skipped)
	assert.NotEmpty(t, out.Archive)
}
