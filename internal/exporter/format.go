package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// formatFloat renders the shortest decimal text that round-trips to f, without
// exponent notation and without trailing zeros.
func formatFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatValue renders a nullable value; null is the empty string.
func formatValue(v domain.Value) string {
	f, ok := v.Float64()
	if !ok {
		return ""
	}
	return formatFloat(f)
}

// formatCell renders one table cell for text output.
func formatCell(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return formatInt(v)
	case float64:
		return formatFloat(v)
	case domain.Value:
		return formatValue(v)
	default:
		return ""
	}
}

// cellValue unwraps a cell for typed output. ok is false for nulls.
func cellValue(c any) (any, bool) {
	switch v := c.(type) {
	case nil:
		return nil, false
	case domain.Value:
		f, ok := v.Float64()
		return f, ok
	default:
		return v, true
	}
}
