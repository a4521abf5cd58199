package analysis

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// Components is the number of principal components kept by PCA
const Components = 2

// Fallback reasons reported in Diagnostics
const (
	FallbackEmptyInput         = "empty_input"
	FallbackIdentityCovariance = "identity_covariance"
	FallbackZeroEigenvalue     = "zero_eigenvalue"
	FallbackZeroVarianceSum    = "zero_variance_sum"
)

// Diagnostics records the degenerate paths an analysis went through
type Diagnostics struct {
	Fallbacks  []string         `json:"fallbacks,omitempty"`
	Reseeds    int              `json:"reseeds"`
	Iterations [Components]int  `json:"iterations"`
	Converged  [Components]bool `json:"converged"`
}

// PCAResult is the 2D projection of a set of records
type PCAResult struct {
	Features          []string
	Scores            []Point // aligned index-for-index with the input records
	Eigenvalues       [Components]float64
	Eigenvectors      [Components][]float64
	VarianceExplained [Components]float64
	Means             []float64
	StdDevs           []float64
	Diagnostics       Diagnostics
}

// Loadings returns the eigenvector of component pc keyed by feature name
func (r *PCAResult) Loadings(pc int) map[string]float64 {
	if pc < 0 || pc >= Components {
		return nil
	}
	return EigenPair{Vector: r.Eigenvectors[pc]}.Loadings(r.Features)
}

// Loading returns the weight of a single feature on component pc
func (r *PCAResult) Loading(pc int, feature string) (float64, bool) {
	if pc < 0 || pc >= Components {
		return 0, false
	}
	i := index(r.Features, feature)
	if i < 0 || i >= len(r.Eigenvectors[pc]) {
		return 0, false
	}
	return r.Eigenvectors[pc][i], true
}

// PCA projects records onto their first two principal components.
// It never fails: degenerate input produces a well-formed neutral result.
func PCA(records []Record, features []string, cfg Config) *PCAResult {
	return PCAWithRand(records, features, cfg, nil)
}

// PCAWithRand is PCA with an explicit random source for the eigen reseed path.
// A nil rng is derived from cfg.
func PCAWithRand(records []Record, features []string, cfg Config, rng *rand.Rand) *PCAResult {
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = cfg.NewRand()
	}

	if len(records) == 0 {
		log.Warn().
			Int("features", len(features)).
			Msg("No records to analyze, returning neutral PCA result")
		return emptyPCAResult(features)
	}

	std := Standardize(NewTable(records, features).Coerced(), cfg.StdDevEpsilon)
	cov := CovarianceMatrix(std.Table)
	pairs := EigenPairs(cov.Matrix, Components, cfg, rng)

	res := &PCAResult{
		Features: features,
		Scores:   make([]Point, len(records)),
		Means:    std.Means,
		StdDevs:  std.StdDevs,
	}
	if cov.Identity {
		res.Diagnostics.Fallbacks = append(res.Diagnostics.Fallbacks, FallbackIdentityCovariance)
	}

	for k, pair := range pairs {
		res.Eigenvalues[k] = pair.Value
		res.Eigenvectors[k] = pair.Vector
		res.Diagnostics.Reseeds += pair.Reseeds
		res.Diagnostics.Iterations[k] = pair.Iterations
		res.Diagnostics.Converged[k] = pair.Converged
		if pair.Forced {
			res.Diagnostics.Fallbacks = append(res.Diagnostics.Fallbacks, FallbackZeroEigenvalue)
		}
	}

	for i, row := range std.Rows {
		res.Scores[i] = Point{project(row, res.Eigenvectors[0]), project(row, res.Eigenvectors[1])}
	}

	total := res.Eigenvalues[0] + res.Eigenvalues[1]
	if total == 0 {
		total = 1
		res.Diagnostics.Fallbacks = append(res.Diagnostics.Fallbacks, FallbackZeroVarianceSum)
	}
	for k := range res.VarianceExplained {
		res.VarianceExplained[k] = res.Eigenvalues[k] / total
	}

	log.Debug().
		Int("records", len(records)).
		Int("features", len(features)).
		Floats64("eigenvalues", res.Eigenvalues[:]).
		Floats64("variance_explained", res.VarianceExplained[:]).
		Msg("Completed PCA")

	return res
}

// project dots a standardized row with an eigenvector, dropping NaN terms
func project(row, vec []float64) float64 {
	var sum float64
	for j, x := range row {
		if j >= len(vec) {
			break
		}
		term := x * vec[j]
		if math.IsNaN(term) {
			continue
		}
		sum += term
	}
	return sum
}

func emptyPCAResult(features []string) *PCAResult {
	res := &PCAResult{
		Features:          features,
		Scores:            []Point{},
		Eigenvalues:       [Components]float64{1, 1},
		VarianceExplained: [Components]float64{0.5, 0.5},
		Diagnostics:       Diagnostics{Fallbacks: []string{FallbackEmptyInput}},
	}
	for k := range res.Eigenvectors {
		res.Eigenvectors[k] = make([]float64, len(features))
	}
	return res
}
