package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayDateLayout is how calendar dates appear on screen and in exports.
const DisplayDateLayout = "02 Jan 2006"

// emptyCell is shown for values the API left blank.
const emptyCell = "-"

var hundred = decimal.NewFromInt(100)

// Ratio returns round(100*n/d), half away from zero, and 0 when d is zero.
func Ratio(n, d decimal.Decimal) int64 {
	if d.IsZero() {
		return 0
	}
	return n.Mul(hundred).Div(d).Round(0).IntPart()
}

// FormatPercent renders a whole-number percentage.
func FormatPercent(p int64) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatDate turns an API date (YYYY-MM-DD or RFC 3339) into "02 Jan 2006".
// Unparseable input is returned unchanged.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return emptyCell
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return raw
}

// MonthLabel renders (2024, 1) as "Jan 2024". Out-of-range months fall back to "13/2024".
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

var titleCaser = cases.Title(language.English)

// TitleCase normalizes API labels: "under_review" → "Under Review", "HIGH" → "High".
func TitleCase(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return emptyCell
	}
	return titleCaser.String(s)
}

// StatusLabel is TitleCase for claim statuses.
func StatusLabel(status string) string {
	return TitleCase(status)
}

// FormatScore renders a fraud score with one decimal place.
func FormatScore(d decimal.Decimal) string {
	return d.StringFixed(1)
}

// FormatHours renders a duration in hours with one decimal place.
func FormatHours(d decimal.Decimal) string {
	return d.StringFixed(1) + " h"
}

// Formatter holds the locale-dependent formatting (currency, digit grouping).
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a Formatter for a BCP 47 locale and an ISO 4217 currency code.
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("report locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("report currency %q: %w", currencyCode, err)
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}, nil
}

// DefaultFormatter formats for the portal's home market (en-IN, INR).
func DefaultFormatter() *Formatter {
	f, err := NewFormatter("en-IN", "INR")
	if err != nil {
		panic(err)
	}
	return f
}

// FormatCurrency renders an amount without decimals, with grouping and the currency symbol.
func (f *Formatter) FormatCurrency(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-" + f.symbol + f.printer.Sprintf("%d", -n)
	}
	return f.symbol + f.printer.Sprintf("%d", n)
}

// FormatCount renders an integer with locale digit grouping.
func (f *Formatter) FormatCount(n int64) string {
	return f.printer.Sprintf("%d", n)
}
