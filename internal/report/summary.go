package report

import "github.com/dmitrijs2005/taxvault/internal/server/models"

// Summary holds the yearly totals in cents.
type Summary struct {
	TotalIncome   int64 `json:"totalIncome"`
	TotalExpenses int64 `json:"totalExpenses"`
	NetIncome     int64 `json:"netIncome"`
}

// MonthTotals is one row of the monthly breakdown.
type MonthTotals struct {
	Month    int   `json:"month"`
	Income   int64 `json:"income"`
	Expenses int64 `json:"expenses"`
	Net      int64 `json:"net"`
}

// Summarize adds up income and expense amounts. NetIncome may be negative.
func Summarize(entries []models.LedgerEntry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Type {
		case models.EntryIncome:
			s.TotalIncome += e.Amount
		case models.EntryExpense:
			s.TotalExpenses += e.Amount
		}
	}
	s.NetIncome = s.TotalIncome - s.TotalExpenses
	return s
}

// MonthlyBreakdown returns twelve rows (January first) for the given year.
// Entries whose invoice date falls in another year are ignored.
func MonthlyBreakdown(entries []models.LedgerEntry, year int) []MonthTotals {
	months := make([]MonthTotals, 12)
	for i := range months {
		months[i].Month = i + 1
	}

	for _, e := range entries {
		if e.InvoiceDate.Year() != year {
			continue
		}
		m := &months[int(e.InvoiceDate.Month())-1]
		switch e.Type {
		case models.EntryIncome:
			m.Income += e.Amount
		case models.EntryExpense:
			m.Expenses += e.Amount
		}
	}

	for i := range months {
		months[i].Net = months[i].Income - months[i].Expenses
	}
	return months
}
