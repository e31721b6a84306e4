package analysis

import (
	"encoding/json"
	"strconv"
)

// Value is an extracted parameter value. It holds either a parsed number
// or the cleaned text the model returned when that text is not a valid
// number (a cheque date written out, a reference code, an empty "N/A").
type Value struct {
	number  float64
	text    string
	numeric bool
}

// Numeric creates a numeric Value.
func Numeric(f float64) Value {
	return Value{number: f, numeric: true}
}

// Raw creates a textual fallback Value.
func Raw(s string) Value {
	return Value{text: s}
}

// Number returns the numeric value and whether the Value is numeric.
func (v Value) Number() (float64, bool) {
	return v.number, v.numeric
}

// IsNumeric reports whether the Value parsed as a number.
func (v Value) IsNumeric() bool {
	return v.numeric
}

// String renders the value the way it is exported: numbers without
// trailing zeros, text as-is.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// ParseValue builds a Value from already-cleaned text: numeric when the
// text parses as a float, textual fallback otherwise.
func ParseValue(s string) Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Numeric(f)
	}
	return Raw(s)
}

// MarshalJSON encodes numeric values as JSON numbers and fallback values
// as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Numeric(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Raw(s)
	return nil
}
