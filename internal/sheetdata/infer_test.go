package sheetdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name      string
		raw       Value
		formatted string
		expected  CellType
	}{
		{"boolean true", BoolValue(true), "TRUE", CellTypeBoolean},
		{"boolean false", BoolValue(false), "FALSE", CellTypeBoolean},
		{"percentage", NumberValue(42), "42%", CellTypePercentage},
		{"fractional percentage", NumberValue(0.125), "12.5%", CellTypePercentage},
		{"dollar currency", NumberValue(42), "$42.00", CellTypeCurrency},
		{"pound currency", NumberValue(1234.5), "£1,234.50", CellTypeCurrency},
		{"euro currency", NumberValue(3), "3,00 €", CellTypeCurrency},
		{"won currency", NumberValue(1000), "₩1,000", CellTypeCurrency},
		{"percent wins over currency", NumberValue(5), "$5%", CellTypePercentage},
		{"numeric slash date", NumberValue(45306), "1/15/2024", CellTypeDate},
		{"numeric dash date two digit year", NumberValue(45306), "15-01-24", CellTypeDate},
		{"numeric date time", NumberValue(45306.5), "1/15/2024 12:00:00", CellTypeDate},
		{"plain number", NumberValue(42), "42", CellTypeNumber},
		{"number with separators", NumberValue(1234567), "1,234,567", CellTypeNumber},
		{"numeric ISO display is not a day-month date", NumberValue(45306), "2024-01-15", CellTypeNumber},
		{"three digit year is not a date", NumberValue(1), "1/2/202", CellTypeNumber},
		{"ISO string date", StringValue("2024-01-15"), "2024-01-15", CellTypeDate},
		{"slash string date", StringValue("15/01/2024"), "15/01/2024", CellTypeDate},
		{"dash string date", StringValue("1-2-24"), "1-2-24", CellTypeDate},
		{"plain string", StringValue("hello"), "hello", CellTypeString},
		{"string with percent", StringValue("50%"), "50%", CellTypeString},
		{"string with currency", StringValue("$5"), "$5", CellTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferType(tt.raw, tt.formatted))
		})
	}
}
