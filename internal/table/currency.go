package table

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "§"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount held in hundredths, e.g. §1,234.56.
func FormatCurrency(hundredths int64) string {
	return CurrencySymbol + printer.Sprintf("%.2f", float64(hundredths)/100)
}
