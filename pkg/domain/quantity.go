package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Quantity holds either a numeric amount or free-form text such as "2-3".
// Numeric quantities round-trip as JSON numbers, text quantities as strings.
type Quantity struct {
	value float64
	text  string
	isNum bool
}

// NumericQuantity builds a numeric quantity.
func NumericQuantity(v float64) Quantity {
	return Quantity{value: v, isNum: true}
}

// TextQuantity builds a free-form text quantity.
func TextQuantity(s string) Quantity {
	return Quantity{text: s}
}

// IsNumeric reports whether the quantity holds a number.
func (q Quantity) IsNumeric() bool { return q.isNum }

// Value returns the numeric amount, or 0 for text quantities.
func (q Quantity) Value() float64 {
	if q.isNum {
		return q.value
	}
	return 0
}

// String renders the quantity for display.
func (q Quantity) String() string {
	if q.isNum {
		return strconv.FormatFloat(q.value, 'f', -1, 64)
	}
	return q.text
}

// MarshalJSON encodes numeric quantities as JSON numbers and text quantities
// as JSON strings.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.isNum {
		return json.Marshal(q.value)
	}
	return json.Marshal(q.text)
}

// UnmarshalJSON accepts a JSON number or string. Numeric strings stay text,
// matching how they were entered.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*q = NumericQuantity(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = TextQuantity(s)
		return nil
	}
	return fmt.Errorf("quantity must be a number or string, got %s", string(data))
}
