package sheetdata

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// Value is a raw cell value: exactly one of string, number or boolean
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// StringValue returns a string Value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric Value
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// BoolValue returns a boolean Value
func BoolValue(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// Kind returns the variant tag
func (v Value) Kind() Kind {
	return v.kind
}

// Str returns the string payload and whether the value is a string
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Number returns the numeric payload and whether the value is a number
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Bool returns the boolean payload and whether the value is a boolean
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// IsEmpty reports whether the value is the empty string.
// Numbers (including zero) and booleans are never empty.
func (v Value) IsEmpty() bool {
	return v.kind == KindString && v.str == ""
}

// String renders the value the way a spreadsheet display would without formatting:
// integers without a decimal point, booleans as true/false.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// MarshalJSON encodes the value as its native JSON type
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(formatNumber(v.num))
		}
		return json.Marshal(v.num)
	case KindBoolean:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON decodes a native JSON string, number or boolean
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	case string:
		*v = StringValue(x)
	case nil:
		*v = StringValue("")
	default:
		*v = StringValue(string(data))
	}
	return nil
}

func formatNumber(n float64) string {
	if math.Abs(n) >= 1e21 {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
