package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/dbx"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
)

// table describes how one entry kind is stored.
type table struct {
	name         string
	counterparty string
}

var tables = map[models.EntryType]table{
	models.EntryIncome:  {name: "income", counterparty: "customer"},
	models.EntryExpense: {name: "expense", counterparty: "vendor"},
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// YearBounds returns [Jan 1 year, Jan 1 year+1) in UTC.
func YearBounds(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func (r *PostgresRepository) ListForYear(ctx context.Context, ownerID string, year int) ([]models.LedgerEntry, error) {
	from, to := YearBounds(year)

	var result []models.LedgerEntry
	for _, kind := range []models.EntryType{models.EntryIncome, models.EntryExpense} {
		t := tables[kind]
		query := fmt.Sprintf(`SELECT id, user_id, invoice_date, payment_date, %s, description, amount, file_url
			FROM %s
			WHERE user_id=$1 AND invoice_date >= $2 AND invoice_date < $3
			ORDER BY invoice_date, id`, t.counterparty, t.name)

		rows, err := r.db.QueryContext(ctx, query, ownerID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to select %s: %w", t.name, err)
		}
		entries, err := scanEntries(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", t.name, err)
		}
		result = append(result, entries...)
	}
	return result, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, invoice_date, payment_date, customer, description, amount, file_url, 'income' AS kind
		FROM income WHERE user_id=$1
		UNION ALL
		SELECT id, user_id, invoice_date, payment_date, vendor, description, amount, file_url, 'expense' AS kind
		FROM expense WHERE user_id=$1
		ORDER BY invoice_date DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select recent entries: %w", err)
	}
	return scanEntries(rows, "")
}

// scanEntries reads rows shaped like the ListForYear select. With an empty
// kind, a trailing kind column is expected.
func scanEntries(rows *sql.Rows, kind models.EntryType) ([]models.LedgerEntry, error) {
	defer rows.Close()

	var result []models.LedgerEntry
	for rows.Next() {
		var (
			e       models.LedgerEntry
			paid    sql.NullTime
			fileURL sql.NullString
			rowKind string
		)
		dest := []any{&e.ID, &e.OwnerID, &e.InvoiceDate, &paid, &e.Counterparty, &e.Description, &e.Amount, &fileURL}
		if kind == "" {
			dest = append(dest, &rowKind)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if paid.Valid {
			t := paid.Time
			e.PaymentDate = &t
		}
		e.Attachment = fileURL.String
		e.Type = kind
		if kind == "" {
			e.Type = models.EntryType(rowKind)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) AttachFile(ctx context.Context, kind models.EntryType, id, ownerID string, att models.Attachment) error {
	t, ok := tables[kind]
	if !ok {
		return fmt.Errorf("unknown entry kind %q", kind)
	}

	var owner string
	query := fmt.Sprintf(`SELECT user_id FROM %s WHERE id=$1 FOR UPDATE`, t.name)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("failed to lock %s row: %w", t.name, err)
	}
	if owner != ownerID {
		return common.ErrorNotFound
	}

	query = fmt.Sprintf(`UPDATE %s SET file_url=$1, file_name=$2, file_type=$3, updated_at=now()
		WHERE id=$4 AND user_id=$5`, t.name)
	res, err := r.db.ExecContext(ctx, query, att.URL, att.FileName, att.FileType, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
