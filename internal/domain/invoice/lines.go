package invoice

import (
	"math"
	"strconv"
	"strings"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
)

// Line field identifiers accepted by UpdateLine.
const (
	LineDescription = "description"
	LineQuantity    = "quantity"
	LineRate        = "rate"
)

// NormalizeNumericInput turns typed quantity or rate text into the string that gets stored.
//
// Text the user is still typing a decimal into ("2.", "1.50") is kept as is. Anything else is
// parsed; input that is not a number, or is zero, becomes "0".
func NormalizeNumericInput(value string) string {
	if strings.HasSuffix(value, ".") || (strings.HasSuffix(value, "0") && strings.Contains(value, ".")) {
		return value
	}

	n, ok := totals.ParseNumber(value)
	if !ok || n == 0 {
		return "0"
	}
	return formatNumber(n)
}

// formatNumber renders n the shortest way that reads back to n, switching to exponent
// form for very large and very small magnitudes.
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}

	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		// 1e-07 -> 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// UpdateLine returns a copy of inv with one field of the line at index replaced.
// Quantity and rate pass through NormalizeNumericInput; descriptions are stored verbatim.
func UpdateLine(inv entity.Invoice, index int, field, value string) (entity.Invoice, bool) {
	if index < 0 || index >= len(inv.ProductLines) {
		return inv, false
	}

	out := inv.Clone()
	line := &out.ProductLines[index]

	switch field {
	case LineDescription:
		line.Description = value
	case LineQuantity:
		line.Quantity = NormalizeNumericInput(value)
	case LineRate:
		line.Rate = NormalizeNumericInput(value)
	default:
		return inv, false
	}
	return out, true
}

// AddLine returns a copy of inv with an empty line appended.
func AddLine(inv entity.Invoice) entity.Invoice {
	out := inv.Clone()
	out.ProductLines = append(out.ProductLines, entity.DefaultProductLine())
	return out
}

// RemoveLine returns a copy of inv without the line at index. Remaining lines keep their order.
func RemoveLine(inv entity.Invoice, index int) (entity.Invoice, bool) {
	if index < 0 || index >= len(inv.ProductLines) {
		return inv, false
	}

	out := inv.Clone()
	lines := make([]entity.ProductLine, 0, len(inv.ProductLines)-1)
	lines = append(lines, inv.ProductLines[:index]...)
	lines = append(lines, inv.ProductLines[index+1:]...)
	out.ProductLines = lines
	return out, true
}
