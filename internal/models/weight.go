// ABOUTME: Exact decimal weight stored with two fractional digits.
// ABOUTME: Encodes to JSON as a plain number literal, never through float64.
package models

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightPlaces is the number of fractional digits kept for stored weights.
const WeightPlaces = 2

// Weight is an exact decimal weight in pounds.
type Weight struct {
	decimal.Decimal
}

// NewWeight rounds a float weight to WeightPlaces.
func NewWeight(f float64) Weight {
	return Weight{decimal.NewFromFloat(f).Round(WeightPlaces)}
}

// ParseWeight parses a decimal string and rounds it to WeightPlaces.
func ParseWeight(s string) (Weight, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Weight{}, fmt.Errorf("parse weight %q: %w", s, err)
	}
	return Weight{d.Round(WeightPlaces)}, nil
}

// Float64 converts the weight for callers that need a float.
func (w Weight) Float64() float64 {
	f, _ := w.Decimal.Float64()
	return f
}

// MarshalJSON writes the exact decimal text as a JSON number.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.Decimal.String()), nil
}

// UnmarshalJSON accepts both number literals and quoted decimal strings
// and rounds to WeightPlaces.
func (w *Weight) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		w.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	w.Decimal = d.Round(WeightPlaces)
	return nil
}
