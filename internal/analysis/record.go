package analysis

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Record maps a feature name to the raw value observed for one item.
// Values may be any numeric type, a numeric string or anything else;
// non-numeric values are tolerated and coerced where the analysis needs a number.
type Record map[string]any

// Float coerces a raw value to float64. ok is false for values that are
// not finite numbers.
func Float(v any) (f float64, ok bool) {
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Table is a fixed-order numeric view over a set of records.
// Rows[i][j] is the value of Features[j] for record i; NaN marks a value
// that was not numeric.
type Table struct {
	Features []string
	Rows     [][]float64
}

// NewTable lays records out in feature order
func NewTable(records []Record, features []string) Table {
	rows := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(features))
		for j, name := range features {
			if f, ok := Float(rec[name]); ok {
				row[j] = f
			} else {
				row[j] = math.NaN()
			}
		}
		rows[i] = row
	}
	return Table{Features: features, Rows: rows}
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Coerced returns a copy of the table with every non-numeric value replaced by 0
func (t Table) Coerced() Table {
	rows := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]float64, len(row))
		for j, v := range row {
			if valid(v) {
				out[j] = v
			}
		}
		rows[i] = out
	}
	return Table{Features: t.Features, Rows: rows}
}

// Records converts the table back to name-keyed maps
func (t Table) Records() []map[string]float64 {
	out := make([]map[string]float64, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]float64, len(t.Features))
		for j, name := range t.Features {
			m[name] = row[j]
		}
		out[i] = m
	}
	return out
}

// index returns the position of a feature, or -1
func index(features []string, name string) int {
	for i, f := range features {
		if f == name {
			return i
		}
	}
	return -1
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
