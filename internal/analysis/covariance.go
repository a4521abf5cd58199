package analysis

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Covariance is a feature-by-feature covariance matrix in table order
type Covariance struct {
	Features []string
	Matrix   *mat.SymDense // nil when there are no features
	Identity bool          // the whole matrix is the identity fallback
}

// At returns the covariance between two named features
func (c Covariance) At(a, b string) (float64, bool) {
	i, j := index(c.Features, a), index(c.Features, b)
	if i < 0 || j < 0 || c.Matrix == nil {
		return 0, false
	}
	return c.Matrix.At(i, j), true
}

// Size returns the number of features covered
func (c Covariance) Size() int {
	if c.Matrix == nil {
		return 0
	}
	return c.Matrix.SymmetricDim()
}

// CovarianceMatrix builds the sample covariance of standardized rows.
//
// Each entry only uses rows where both values are numeric and is divided by
// (pairs - 1). Entries with at most one usable pair fall back to the identity.
// Fewer than two rows yield the identity matrix outright.
func CovarianceMatrix(t Table) Covariance {
	n := len(t.Features)
	if n == 0 {
		return Covariance{Features: t.Features}
	}

	if t.Len() < 2 {
		log.Warn().
			Int("records", t.Len()).
			Int("features", n).
			Msg("Not enough records for covariance, using identity matrix")
		return Covariance{Features: t.Features, Matrix: identity(n), Identity: true}
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			var pairs int
			for _, row := range t.Rows {
				if valid(row[i]) && valid(row[j]) {
					sum += row[i] * row[j]
					pairs++
				}
			}
			switch {
			case pairs > 1:
				cov.SetSym(i, j, sum/float64(pairs-1))
			case i == j:
				cov.SetSym(i, j, 1)
			default:
				cov.SetSym(i, j, 0)
			}
		}
	}

	return Covariance{Features: t.Features, Matrix: cov}
}

func identity(n int) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}
