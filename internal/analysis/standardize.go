package analysis

import (
	"math"

	"github.com/rs/zerolog/log"
)

// Standardized holds z-scored rows together with the statistics used to produce them
type Standardized struct {
	Table
	Means   []float64
	StdDevs []float64
}

// Mean returns the mean computed for a feature
func (s Standardized) Mean(feature string) (float64, bool) {
	i := index(s.Features, feature)
	if i < 0 || i >= len(s.Means) {
		return 0, false
	}
	return s.Means[i], true
}

// StdDev returns the (possibly clamped) standard deviation used for a feature
func (s Standardized) StdDev(feature string) (float64, bool) {
	i := index(s.Features, feature)
	if i < 0 || i >= len(s.StdDevs) {
		return 0, false
	}
	return s.StdDevs[i], true
}

// Standardize z-scores every column of the table.
//
// Means and population standard deviations are computed over the numeric
// values of a column only. A column with at most one numeric value, or with a
// standard deviation below eps, is divided by 1 instead. Numeric values of a
// column whose values are all identical become exactly 0. Non-numeric values
// enter the output as 0 before the mean is subtracted. The output never
// contains NaN.
func Standardize(t Table, eps float64) Standardized {
	if t.Len() == 0 || len(t.Features) == 0 {
		log.Debug().
			Int("records", t.Len()).
			Int("features", len(t.Features)).
			Msg("Nothing to standardize")
		return Standardized{Table: Table{Features: t.Features, Rows: [][]float64{}}}
	}

	cols := len(t.Features)
	means := make([]float64, cols)
	stds := make([]float64, cols)
	identical := make([]bool, cols)

	for j := 0; j < cols; j++ {
		mom := columnMoments(t.Rows, j)
		if mom.rescaled {
			log.Warn().
				Str("feature", t.Features[j]).
				Float64("mean", mom.mean).
				Float64("stddev", mom.std).
				Msg("Feature values overflow direct accumulation, moments computed on rescaled values")
		}

		means[j] = mom.mean
		identical[j] = mom.identical
		stds[j] = mom.std
		if mom.count <= 1 || stds[j] < eps || !valid(stds[j]) {
			stds[j] = 1
		}
	}

	rows := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]float64, cols)
		for j, raw := range row {
			if !valid(raw) {
				raw = 0
			} else if identical[j] {
				continue
			}
			z := (raw - means[j]) / stds[j]
			if !valid(z) {
				z = 0
			}
			out[j] = z
		}
		rows[i] = out
	}

	return Standardized{
		Table:   Table{Features: t.Features, Rows: rows},
		Means:   means,
		StdDevs: stds,
	}
}

type moments struct {
	mean      float64
	std       float64 // population
	count     int
	identical bool // every numeric value is the same
	rescaled  bool
}

// columnMoments accumulates column j with Welford's update. When the running
// values overflow, the column is accumulated again divided by its largest
// magnitude and the result scaled back.
func columnMoments(rows [][]float64, j int) moments {
	var mom moments
	var lo, hi float64
	var m2 float64
	for _, row := range rows {
		x := row[j]
		if !valid(x) {
			continue
		}
		mom.count++
		if mom.count == 1 {
			lo, hi = x, x
		} else {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		d := x - mom.mean
		mom.mean += d / float64(mom.count)
		m2 += d * (x - mom.mean)
	}
	if mom.count == 0 {
		return mom
	}
	mom.identical = lo == hi

	if valid(mom.mean) && valid(m2) {
		mom.std = math.Sqrt(m2 / float64(mom.count))
		return mom
	}

	scale := math.Max(math.Abs(lo), math.Abs(hi))
	var mean, n float64
	m2 = 0
	for _, row := range rows {
		if !valid(row[j]) {
			continue
		}
		x := row[j] / scale
		n++
		d := x - mean
		mean += d / n
		m2 += d * (x - mean)
	}
	mom.mean = mean * scale
	mom.std = math.Sqrt(m2/n) * scale
	mom.rescaled = true
	return mom
}
