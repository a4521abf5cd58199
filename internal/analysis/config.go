package analysis

import (
	"math/rand"
	"time"
)

// Config holds the numerical knobs of the analysis engine
type Config struct {
	// Standardization
	StdDevEpsilon float64 // Standard deviations below this are treated as 1

	// Eigen decomposition
	EigenMaxIterations int     // Power iterations per component
	EigenTolerance     float64 // Squared change between iterates that counts as converged
	ZeroNormThreshold  float64 // Norms below this trigger a random reseed

	// Clustering
	KMeansMaxIterations int     // Maximum assignment/update rounds
	KMeansTolerance     float64 // Centroid movement that counts as converged

	// Seed for the pseudo-random source. Zero seeds from the clock.
	Seed int64
}

// DefaultConfig returns default analysis configuration
func DefaultConfig() Config {
	return Config{
		StdDevEpsilon:       1e-5,
		EigenMaxIterations:  100,
		EigenTolerance:      1e-10,
		ZeroNormThreshold:   1e-10,
		KMeansMaxIterations: 100,
		KMeansTolerance:     0.001,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.StdDevEpsilon <= 0 {
		c.StdDevEpsilon = def.StdDevEpsilon
	}
	if c.EigenMaxIterations <= 0 {
		c.EigenMaxIterations = def.EigenMaxIterations
	}
	if c.EigenTolerance <= 0 {
		c.EigenTolerance = def.EigenTolerance
	}
	if c.ZeroNormThreshold <= 0 {
		c.ZeroNormThreshold = def.ZeroNormThreshold
	}
	if c.KMeansMaxIterations <= 0 {
		c.KMeansMaxIterations = def.KMeansMaxIterations
	}
	if c.KMeansTolerance <= 0 {
		c.KMeansTolerance = def.KMeansTolerance
	}
	return c
}

// NewRand returns the pseudo-random source described by the config
func (c Config) NewRand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
