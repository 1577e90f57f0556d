package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is an optional float64 observation. The zero Value is null.
//
// Missing cells, the "No aplica" marker, unparseable text and guarded
// arithmetic all produce a null Value instead of zero, so gaps propagate
// through every derived column.
type Value struct {
	v     float64
	valid bool
}

// Some returns a present Value. Non-finite inputs (NaN, ±Inf) are null.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, valid: true}
}

// Null returns an absent Value.
func Null() Value {
	return Value{}
}

// Valid reports whether the value is present.
func (x Value) Valid() bool {
	return x.valid
}

// Float64 returns the underlying float and whether it is present.
func (x Value) Float64() (float64, bool) {
	return x.v, x.valid
}

// Float64Or returns the underlying float, or def when the value is null.
func (x Value) Float64Or(def float64) float64 {
	if !x.valid {
		return def
	}
	return x.v
}

// Positive reports whether the value is present and strictly greater than zero.
func (x Value) Positive() bool {
	return x.valid && x.v > 0
}

// String renders the value for logs; null renders as "null".
func (x Value) String() string {
	if !x.valid {
		return "null"
	}
	return strconv.FormatFloat(x.v, 'g', -1, 64)
}

// MarshalJSON encodes null values as JSON null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(x.v, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number or null.
func (x *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*x = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Some(f)
	return nil
}
