package sheetdata

import (
	"regexp"
	"strings"
)

// CellType is the coarse semantic type inferred for a cell
type CellType string

const (
	CellTypeString     CellType = "string"
	CellTypeNumber     CellType = "number"
	CellTypeCurrency   CellType = "currency"
	CellTypePercentage CellType = "percentage"
	CellTypeDate       CellType = "date"
	CellTypeBoolean    CellType = "boolean"
)

const currencySymbols = "$£€¥₹₽₩"

var (
	// D/M/YY[YY] or D-M-YY[YY], optionally followed by a time component
	dayMonthYearPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/(\d{4}|\d{2})\b|^\d{1,2}-\d{1,2}-(\d{4}|\d{2})\b`)
	isoDatePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\b`)
)

// InferType classifies a cell from its raw value and its display string.
// Rules are applied in priority order and the first match wins.
func InferType(raw Value, formatted string) CellType {
	switch raw.Kind() {
	case KindBoolean:
		return CellTypeBoolean
	case KindNumber:
		switch {
		case strings.Contains(formatted, "%"):
			return CellTypePercentage
		case strings.ContainsAny(formatted, currencySymbols):
			return CellTypeCurrency
		case dayMonthYearPattern.MatchString(formatted):
			return CellTypeDate
		default:
			return CellTypeNumber
		}
	}

	s, _ := raw.Str()
	if dayMonthYearPattern.MatchString(s) || isoDatePattern.MatchString(s) {
		return CellTypeDate
	}
	return CellTypeString
}
