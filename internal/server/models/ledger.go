package models

import "time"

// EntryType distinguishes the two ledger tables.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// ParseEntryType accepts "income" or "expense".
func ParseEntryType(s string) (EntryType, bool) {
	switch EntryType(s) {
	case EntryIncome, EntryExpense:
		return EntryType(s), true
	}
	return "", false
}

// LedgerEntry is one income or expense row as the report and export see it.
//
// Amount is in minor units (cents). Counterparty is the customer for income
// and the vendor for expenses. Attachment is a logical file reference
// ("/files/{owner}/{storedName}") or empty.
type LedgerEntry struct {
	ID           string
	OwnerID      string
	Type         EntryType
	InvoiceDate  time.Time
	PaymentDate  *time.Time
	Counterparty string
	Description  string
	Amount       int64
	Attachment   string
}

func (e LedgerEntry) HasAttachment() bool {
	return e.Attachment != ""
}
