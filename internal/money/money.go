// Package money provides the fixed-point monetary value used throughout the
// optimization engine. Scraped prices arrive as loosely formatted strings
// ("£1.50", " 1.5", "$2", ""); Parse is deliberately forgiving and reports
// failure as absence rather than as an error, so downstream logic deals with
// "absent" as a first-class state instead of exceptions.
//
// Absent prices are represented as nil *Amount pointers in the data model.
// Display strings ("£1.50", "N/A") exist only at formatting boundaries;
// comparison and arithmetic always happen on the decimal value.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the currency symbol emitted when formatting amounts.
const Symbol = "£"

// NotAvailable is the display string for an absent amount.
const NotAvailable = "N/A"

// currencySymbols are stripped from raw input before numeric parsing.
var currencySymbols = []string{"£", "$", "€"}

// Amount is a fixed-point monetary value. The zero value is £0.00.
type Amount struct {
	dec decimal.Decimal
}

// Parse converts a raw scraped price string into an Amount. Currency symbols
// and surrounding whitespace are stripped before decimal parsing. Returns
// ok=false for empty or malformed input; it never returns an error.
func Parse(raw string) (Amount, bool) {
	s := strings.TrimSpace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, false
	}
	return Amount{dec: d}, true
}

// ParsePtr is Parse with pointer optionality: nil means absent.
func ParsePtr(raw string) *Amount {
	a, ok := Parse(raw)
	if !ok {
		return nil
	}
	return &a
}

// FromFloat builds an Amount from a float64.
func FromFloat(f float64) Amount {
	return Amount{dec: decimal.NewFromFloat(f)}
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{dec: a.dec.Add(b.dec)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{dec: a.dec.Sub(b.dec)}
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.dec.Cmp(b.dec)
}

// LessThan reports whether a is strictly less than b.
func (a Amount) LessThan(b Amount) bool {
	return a.dec.LessThan(b.dec)
}

// IsPositive reports whether a is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.dec.IsPositive()
}

// IsNegative reports whether a is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.dec.IsNegative()
}

// String formats the amount with the currency symbol and two decimals,
// rounding half-up: 1.5 renders as "£1.50", 1.005 as "£1.01".
func (a Amount) String() string {
	return Symbol + a.dec.StringFixed(2)
}

// Plain formats the amount as a bare two-decimal string without a currency
// symbol. This is the ledger cell representation.
func (a Amount) Plain() string {
	return a.dec.StringFixed(2)
}

// FormatPtr renders an optional amount, using NotAvailable for absence.
func FormatPtr(a *Amount) string {
	if a == nil {
		return NotAvailable
	}
	return a.String()
}

// MinPtr returns the lower of two optional amounts. A nil operand is
// treated as absent; both nil yields nil.
func MinPtr(a, b *Amount) *Amount {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.LessThan(*a) {
		return b
	}
	return a
}
