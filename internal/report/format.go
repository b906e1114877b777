package report

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dePrinter = message.NewPrinter(language.German)

// FormatCurrency renders an amount in cents the way the report prints it:
// "1.234,56 €". Negative amounts keep a leading minus.
func FormatCurrency(cents int64) string {
	return FormatAmount(cents) + " €"
}

// FormatAmount is FormatCurrency without the currency sign, as used in the
// table cells under the "Betrag (€)" header.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + dePrinter.Sprintf("%v", cents/100) + fmt.Sprintf(",%02d", cents%100)
}

// FormatDate renders dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
