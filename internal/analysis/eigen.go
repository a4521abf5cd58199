package analysis

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// EigenPair is an approximate eigenvalue with its unit eigenvector
type EigenPair struct {
	Value      float64
	Vector     []float64
	Iterations int  // power iterations performed
	Converged  bool // stopped on tolerance rather than the iteration cap
	Reseeds    int  // random restarts after a zero-norm product
	Forced     bool // Value was zero or undefined and replaced by 1
}

// Loadings returns the eigenvector keyed by feature name
func (p EigenPair) Loadings(features []string) map[string]float64 {
	out := make(map[string]float64, len(features))
	for i, name := range features {
		if i < len(p.Vector) {
			out[name] = p.Vector[i]
		}
	}
	return out
}

// EigenPairs extracts the count most dominant eigenpairs of a symmetric
// matrix by power iteration with deflation. The input matrix is not modified.
//
// Component k starts from the k-th unit basis vector. rng is only consulted
// when a matrix-vector product collapses to (near) zero, so for well
// conditioned input the result is fully deterministic. The decomposition is
// approximate: later components are only as orthogonal as the iteration cap
// allows.
func EigenPairs(m *mat.SymDense, count int, cfg Config, rng *rand.Rand) []EigenPair {
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = cfg.NewRand()
	}
	pairs := make([]EigenPair, 0, count)

	n := 0
	if m != nil {
		n = m.SymmetricDim()
	}
	if n == 0 {
		for k := 0; k < count; k++ {
			pairs = append(pairs, EigenPair{Value: 1, Vector: []float64{}, Forced: true})
		}
		return pairs
	}

	work := mat.NewSymDense(n, nil)
	work.CopySym(m)

	for k := 0; k < count; k++ {
		pair := powerIterate(work, k%n, cfg, rng)

		lambda := mat.Inner(pair.vec, work, pair.vec)
		pair.Value = lambda
		if lambda == 0 || math.IsNaN(lambda) {
			pair.Value = 1
			pair.Forced = true
		}

		// remove the found direction so the next pass converges elsewhere
		if !math.IsNaN(lambda) {
			work.SymRankOne(work, -lambda, pair.vec)
		}

		pair.Vector = mat.Col(nil, 0, pair.vec)
		pairs = append(pairs, pair.EigenPair)

		log.Debug().
			Int("component", k).
			Float64("eigenvalue", pair.Value).
			Int("iterations", pair.Iterations).
			Bool("converged", pair.Converged).
			Int("reseeds", pair.Reseeds).
			Msg("Extracted eigenpair")
	}

	return pairs
}

type iteratedPair struct {
	EigenPair
	vec *mat.VecDense
}

// powerIterate runs power iteration on m starting from basis vector start
func powerIterate(m *mat.SymDense, start int, cfg Config, rng *rand.Rand) iteratedPair {
	n := m.SymmetricDim()
	v := mat.NewVecDense(n, nil)
	v.SetVec(start, 1)

	next := mat.NewVecDense(n, nil)
	var diff mat.VecDense
	var res iteratedPair

	for iter := 0; iter < cfg.EigenMaxIterations; iter++ {
		next.MulVec(m, v)

		norm := mat.Norm(next, 2)
		if norm < cfg.ZeroNormThreshold {
			reseed(next, rng)
			res.Reseeds++
		} else {
			next.ScaleVec(1/norm, next)
		}

		diff.SubVec(next, v)
		delta := mat.Dot(&diff, &diff)
		v.CopyVec(next)
		res.Iterations = iter + 1

		if delta < cfg.EigenTolerance {
			res.Converged = true
			break
		}
	}

	if res.Reseeds > 0 {
		log.Debug().
			Int("reseeds", res.Reseeds).
			Msg("Power iteration hit a zero-norm direction")
	}

	res.vec = v
	return res
}

// reseed fills v with a uniform random unit vector
func reseed(v *mat.VecDense, rng *rand.Rand) {
	n := v.Len()
	for i := 0; i < n; i++ {
		v.SetVec(i, rng.Float64())
	}
	norm := mat.Norm(v, 2)
	if norm == 0 {
		v.Zero()
		v.SetVec(0, 1)
		return
	}
	v.ScaleVec(1/norm, v)
}
