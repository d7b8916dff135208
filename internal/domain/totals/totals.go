// Package totals derives the computed figures of an invoice: line amounts, subtotal, tax and grand total.
// Nothing here is stored; every figure is recomputed from the record on demand.
package totals

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

var (
	numberPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	taxPercent   = regexp.MustCompile(`(\d+)%`)
)

// Totals holds the derived figures of an invoice, unrounded.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	SaleTax    float64 `json:"saleTax"`
	GrandTotal float64 `json:"grandTotal"`
}

// ParseNumber reads the longest numeric prefix of s after leading whitespace,
// the way browsers parse free-text number input. ok is false when no number is found.
func ParseNumber(s string) (float64, bool) {
	m := numberPrefix.FindString(strings.TrimLeftFunc(s, isSpace))
	if m == "" {
		return math.NaN(), false
	}

	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	// Out-of-range input still yields ±Inf or 0, which is what we want.
	v, _ := strconv.ParseFloat(m, 64)
	return v, true
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// LineAmount is quantity × rate, or 0 when either side is zero or not a number.
func LineAmount(quantity, rate string) float64 {
	q, okQ := ParseNumber(quantity)
	r, okR := ParseNumber(rate)
	if !okQ || !okR || q == 0 || r == 0 {
		return 0
	}
	return q * r
}

// TaxRate extracts the first "<digits>%" from a tax label. Labels without one yield 0.
func TaxRate(label string) float64 {
	m := taxPercent.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return rate
}

// SubTotal sums the unrounded amounts of all lines.
func SubTotal(lines []entity.ProductLine) float64 {
	var sum float64
	for _, line := range lines {
		sum += LineAmount(line.Quantity, line.Rate)
	}
	return sum
}

// SaleTax applies the rate found in taxLabel to subTotal.
func SaleTax(subTotal float64, taxLabel string) float64 {
	if subTotal == 0 {
		return 0
	}
	return subTotal * TaxRate(taxLabel) / 100
}

// Derive computes all totals of inv.
func Derive(inv entity.Invoice) Totals {
	sub := SubTotal(inv.ProductLines)
	tax := SaleTax(sub, inv.TaxLabel)
	return Totals{
		SubTotal:   sub,
		SaleTax:    tax,
		GrandTotal: sub + tax,
	}
}

// FormatMoney rounds v to two decimals for display, half away from zero on the
// exact binary value. 1.005 is stored just below the half and shows as 1.00.
func FormatMoney(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	// 30 places keep every digit that can decide the rounding of a finite float64.
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 30, 64)).StringFixed(2)
}

// Formatted is Totals rendered for display.
type Formatted struct {
	SubTotal   string `json:"subTotal"`
	SaleTax    string `json:"saleTax"`
	GrandTotal string `json:"grandTotal"`
}

// Format renders t with two decimals per figure.
func (t Totals) Format() Formatted {
	return Formatted{
		SubTotal:   FormatMoney(t.SubTotal),
		SaleTax:    FormatMoney(t.SaleTax),
		GrandTotal: FormatMoney(t.GrandTotal),
	}
}

// FormatLineAmounts returns the display amount of every line, in order.
func FormatLineAmounts(lines []entity.ProductLine) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = FormatMoney(LineAmount(line.Quantity, line.Rate))
	}
	return out
}
