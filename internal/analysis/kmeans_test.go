package analysis_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/marquee/internal/analysis"
)

// blobs generates n points scattered tightly around each center
func blobs(rng *rand.Rand, n int, spread float64, centers ...analysis.Point) []analysis.Point {
	var points []analysis.Point
	for _, c := range centers {
		for i := 0; i < n; i++ {
			points = append(points, analysis.Point{
				c[0] + spread*(rng.Float64()-0.5),
				c[1] + spread*(rng.Float64()-0.5),
			})
		}
	}
	return points
}

func mean(points []analysis.Point) analysis.Point {
	var m analysis.Point
	for _, p := range points {
		m[0] += p[0]
		m[1] += p[1]
	}
	m[0] /= float64(len(points))
	m[1] /= float64(len(points))
	return m
}

func TestKMeansInvalidInput(t *testing.T) {
	_, err := analysis.KMeans(nil, 2, analysis.DefaultConfig())
	require.Error(t, err)
	assert.True(t, analysis.IsNoPoints(err))

	_, err = analysis.KMeans([]analysis.Point{{1, 1}}, 0, analysis.DefaultConfig())
	require.Error(t, err)
	assert.True(t, analysis.IsInvalidK(err))
	assert.Contains(t, err.Error(), "k=0")
}

func TestKMeansSingleCluster(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := blobs(rng, 40, 10, analysis.Point{3, -2}, analysis.Point{8, 5})
	want := mean(points)

	cfg := analysis.DefaultConfig()
	cfg.KMeansMaxIterations = 1
	for run := 0; run < 2; run++ {
		res, err := analysis.KMeansWithRand(points, 1, cfg, rng)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Iterations)
		require.Len(t, res.Centroids, 1)
		assert.InDelta(t, want[0], res.Centroids[0][0], 1e-12)
		assert.InDelta(t, want[1], res.Centroids[0][1], 1e-12)
	}

	res, err := analysis.KMeans(points, 1, analysis.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.InDelta(t, want[0], res.Centroids[0][0], 1e-12)
	assert.InDelta(t, want[1], res.Centroids[0][1], 1e-12)
	assert.Equal(t, []int{len(points)}, res.Sizes())
}

func TestKMeansLabelConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := blobs(rng, 25, 30, analysis.Point{0, 0}, analysis.Point{20, 0}, analysis.Point{10, 15})

	for _, k := range []int{1, 2, 3, 5, 8} {
		res, err := analysis.KMeansWithRand(points, k, analysis.DefaultConfig(), rng)
		require.NoError(t, err)
		require.Len(t, res.Labels, len(points))
		require.Len(t, res.Centroids, k)
		assert.LessOrEqual(t, res.Iterations, analysis.DefaultConfig().KMeansMaxIterations)

		for i, label := range res.Labels {
			require.GreaterOrEqual(t, label, 0)
			require.Less(t, label, k)

			nearest, err := analysis.FindNearest(points[i], res.Centroids)
			require.NoError(t, err)
			assert.Equal(t, nearest, label, "point %d is not labelled with its nearest centroid", i)
		}
	}
}

func TestKMeansWellSeparated(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	low := blobs(rng, 50, 2, analysis.Point{0, 0})
	high := blobs(rng, 50, 2, analysis.Point{100, 100})
	points := append(append([]analysis.Point{}, low...), high...)
	lowMean, highMean := mean(low), mean(high)

	// a random start can leave one centroid owning both groups; every run
	// that separates them must land on the group means
	separated := 0
	for seed := int64(1); seed <= 10; seed++ {
		cfg := analysis.DefaultConfig()
		cfg.Seed = seed
		res, err := analysis.KMeans(points, 2, cfg)
		require.NoError(t, err)

		sizes := res.Sizes()
		if sizes[0] == 0 || sizes[1] == 0 {
			continue
		}
		separated++

		lowLabel := res.Labels[0]
		highLabel := res.Labels[len(points)-1]
		require.NotEqual(t, lowLabel, highLabel)
		assert.Equal(t, []int{50, 50}, sizes)
		assert.Less(t, analysis.Distance(res.Centroids[lowLabel], lowMean), 1.0)
		assert.Less(t, analysis.Distance(res.Centroids[highLabel], highMean), 1.0)
		assert.True(t, res.Converged)
	}
	assert.Positive(t, separated)
}

func TestKMeansMoreClustersThanPoints(t *testing.T) {
	points := []analysis.Point{{2, 2}, {2, 2}, {2, 2}}

	res, err := analysis.KMeans(points, 3, analysis.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, res.Labels)
	// empty clusters keep their seeded centroid, which collapses onto the only point
	for _, c := range res.Centroids {
		assert.Equal(t, analysis.Point{2, 2}, c)
	}
}

func TestKMeansSeedReproducible(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	points := blobs(rng, 30, 40, analysis.Point{0, 0}, analysis.Point{10, 10})

	cfg := analysis.DefaultConfig()
	cfg.Seed = 1234
	first, err := analysis.KMeans(points, 3, cfg)
	require.NoError(t, err)
	second, err := analysis.KMeans(points, 3, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Labels, second.Labels)
	assert.Equal(t, first.Centroids, second.Centroids)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestFindNearestNoCentroids(t *testing.T) {
	_, err := analysis.FindNearest(analysis.Point{0, 0}, nil)
	assert.Error(t, err)
}

func BenchmarkKMeans(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	points := blobs(rng, 200, 20, analysis.Point{0, 0}, analysis.Point{50, 50}, analysis.Point{0, 50})
	cfg := analysis.DefaultConfig()
	cfg.Seed = 42
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := analysis.KMeans(points, 3, cfg); err != nil {
			b.Fatalf("KMeans() error = %v", err)
		}
	}
}
