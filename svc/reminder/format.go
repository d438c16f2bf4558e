package reminder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/subreminder/svc/subscription"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders "{amount with currency symbol} ({frequency})".
// Unknown currency codes fall back to "{CODE} {amount}".
func FormatPrice(amount decimal.Decimal, code subscription.Currency, freq subscription.Frequency) string {
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return fmt.Sprintf("%s %s (%s)", code, amount.StringFixed(2), freq)
	}
	value, _ := amount.Float64()
	return printer.Sprintf("%v (%s)", currency.Symbol(unit.Amount(value)), freq)
}

// FormatDate renders a renewal date as "Jan 2, 2006" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Jan 2, 2006")
}

func daysWord(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
