package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// MetricKind tags the variant held by a WeeksMetric.
type MetricKind uint8

const (
	// MetricUnavailable is the zero value: the input record was missing.
	MetricUnavailable MetricKind = iota
	// MetricNoSales means the sales average was zero or undefined.
	MetricNoSales
	// MetricValue means the metric carries a finite number of weeks.
	MetricValue
)

func (k MetricKind) String() string {
	switch k {
	case MetricNoSales:
		return "no_sales"
	case MetricValue:
		return "value"
	default:
		return "unavailable"
	}
}

// noSalesLabel is the JSON form of a NoSales metric.
const noSalesLabel = "no_sales"

// WeeksMetric is a weeks-of-stock result. Only Value exposes the number, so a
// NoSales or Unavailable result cannot slip into arithmetic.
type WeeksMetric struct {
	kind  MetricKind
	value float64
}

// Weeks returns a value metric. Non-finite input degrades to NoSales.
func Weeks(v float64) WeeksMetric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoSales()
	}
	return WeeksMetric{kind: MetricValue, value: v}
}

// NoSales returns the metric for a channel with no average sales.
func NoSales() WeeksMetric { return WeeksMetric{kind: MetricNoSales} }

// Unavailable returns the metric for a missing input record.
func Unavailable() WeeksMetric { return WeeksMetric{} }

func (m WeeksMetric) Kind() MetricKind    { return m.kind }
func (m WeeksMetric) IsNoSales() bool     { return m.kind == MetricNoSales }
func (m WeeksMetric) IsUnavailable() bool { return m.kind == MetricUnavailable }

// Value returns the weeks figure and true when the metric holds a number.
func (m WeeksMetric) Value() (float64, bool) {
	if m.kind != MetricValue {
		return 0, false
	}
	return m.value, true
}

func (m WeeksMetric) String() string {
	if v, ok := m.Value(); ok {
		return fmt.Sprintf("%g", v)
	}
	return m.kind.String()
}

// MarshalJSON encodes a value as a number, NoSales as "no_sales" and
// Unavailable as null.
func (m WeeksMetric) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case MetricValue:
		return json.Marshal(m.value)
	case MetricNoSales:
		return json.Marshal(noSalesLabel)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON. The original
// producer's "판매0" label is read as NoSales as well.
func (m *WeeksMetric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Unavailable()
		return nil
	}

	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		switch label {
		case noSalesLabel, "판매0":
			*m = NoSales()
			return nil
		}
		return fmt.Errorf("unknown weeks metric label %q", label)
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode weeks metric: %w", err)
	}
	*m = Weeks(v)
	return nil
}
