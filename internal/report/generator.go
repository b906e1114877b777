// Package report renders the yearly tax overview PDF and the dashboard
// aggregates derived from ledger entries.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"github.com/go-pdf/fpdf"
)

const (
	pageMarginMM  = 20.0
	tableFontSize = 8.0
	rowHeightMM   = 6.0
)

var tableColumns = []struct {
	title string
	width float64
	align string
}{
	{"Datum", 22, "L"},
	{"Beschreibung", 62, "L"},
	{"Kategorie", 36, "L"},
	{"Betrag (€)", 30, "R"},
	{"Anhang", 20, "C"},
}

type rgb struct{ r, g, b int }

var (
	incomeHeaderColor  = rgb{34, 197, 94}
	expenseHeaderColor = rgb{239, 68, 68}
)

// Generator builds the report. It performs no I/O; the clock is only used
// for the footer date and the document timestamps.
type Generator struct {
	now      func() time.Time
	compress bool
}

type Option func(*Generator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithCompression toggles page stream compression (on by default).
func WithCompression(on bool) Option {
	return func(g *Generator) { g.compress = on }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now, compress: true}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate renders the overview for year. Income and expense tables keep the
// order of entries and are left out when they would be empty.
func (g *Generator) Generate(entries []models.LedgerEntry, year int, ownerID string) ([]byte, error) {
	var income, expenses []models.LedgerEntry
	for _, e := range entries {
		switch e.Type {
		case models.EntryIncome:
			income = append(income, e)
		case models.EntryExpense:
			expenses = append(expenses, e)
		}
	}
	summary := Summarize(entries)
	generatedAt := g.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetTitle(fmt.Sprintf("Einkommenssteuer Übersicht %d", year), true)
	pdf.SetAuthor(ownerID, true)
	pdf.SetCreator("taxvault", false)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		footer := fmt.Sprintf("Generiert am %s - Seite %d von {nb}", FormatDate(generatedAt), pdf.PageNo())
		pdf.CellFormat(0, 10, tr(footer), "", 0, "L", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Einkommenssteuer Übersicht %d", year)), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Zusammenfassung:"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Gesamteinkommen: " + FormatCurrency(summary.TotalIncome),
		"Gesamtausgaben: " + FormatCurrency(summary.TotalExpenses),
		"Nettoeinkommen: " + FormatCurrency(summary.NetIncome),
	} {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}

	if len(income) > 0 {
		pdf.Ln(8)
		writeTable(pdf, tr, "Einkommen:", incomeHeaderColor, income)
	}
	if len(expenses) > 0 {
		pdf.Ln(8)
		writeTable(pdf, tr, "Ausgaben:", expenseHeaderColor, expenses)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, title string, header rgb, entries []models.LedgerEntry) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", tableFontSize)
	pdf.SetFillColor(header.r, header.g, header.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(200, 200, 200)
	for _, c := range tableColumns {
		pdf.CellFormat(c.width, rowHeightMM+1, tr(c.title), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", tableFontSize)
	pdf.SetTextColor(0, 0, 0)
	for _, e := range entries {
		cells := []string{
			FormatDate(e.InvoiceDate),
			e.Description,
			category(e),
			FormatAmount(e.Amount),
			attachmentFlag(e),
		}
		for i, c := range tableColumns {
			pdf.CellFormat(c.width, rowHeightMM, fit(pdf, tr, cells[i], c.width-2), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// category prints the counterparty, falling back to the entry kind.
func category(e models.LedgerEntry) string {
	if e.Counterparty != "" {
		return e.Counterparty
	}
	if e.Type == models.EntryIncome {
		return "Income"
	}
	return "Expense"
}

func attachmentFlag(e models.LedgerEntry) string {
	if e.HasAttachment() {
		return "Ja"
	}
	return "Nein"
}

// fit translates s and shortens it with "..." until it fits into width mm at
// the current font.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	out := tr(s)
	if pdf.GetStringWidth(out) <= width {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out = tr(string(runes) + "...")
		if pdf.GetStringWidth(out) <= width {
			return out
		}
	}
	return ""
}
