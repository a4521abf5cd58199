package analysis

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// Clustering is the outcome of a k-means run
type Clustering struct {
	Labels     []int   // cluster index per input point, in [0, k)
	Centroids  []Point // final centroid per cluster
	Iterations int     // assignment/update rounds performed
	Converged  bool    // every centroid moved less than the tolerance on the last round
}

// Sizes returns the number of points assigned to each cluster
func (c *Clustering) Sizes() []int {
	sizes := make([]int, len(c.Centroids))
	for _, l := range c.Labels {
		sizes[l]++
	}
	return sizes
}

// KMeans partitions 2D points into k clusters
func KMeans(points []Point, k int, cfg Config) (*Clustering, error) {
	return KMeansWithRand(points, k, cfg, nil)
}

// KMeansWithRand is KMeans with an explicit random source for centroid
// seeding. A nil rng is derived from cfg.
//
// Centroids start at uniformly random positions inside the bounding box of
// the data. Each round assigns every point to its nearest centroid (ties go to
// the lowest index) and moves each centroid to the mean of its points; an
// empty cluster keeps its centroid. The loop stops once no centroid moves by
// KMeansTolerance or more, or after KMeansMaxIterations rounds. Labels are
// recomputed from the final centroids before returning.
func KMeansWithRand(points []Point, k int, cfg Config, rng *rand.Rand) (*Clustering, error) {
	if len(points) == 0 {
		return nil, &AnalysisError{Op: "kmeans", K: k, Err: ErrNoPoints}
	}
	if k < 1 {
		return nil, &AnalysisError{Op: "kmeans", K: k, Points: len(points), Err: ErrInvalidK}
	}

	cfg = cfg.withDefaults()
	if rng == nil {
		rng = cfg.NewRand()
	}

	centroids := seedCentroids(points, k, rng)
	labels := make([]int, len(points))

	res := &Clustering{}
	for res.Iterations < cfg.KMeansMaxIterations {
		assign(points, centroids, labels)
		next := updateCentroids(points, labels, centroids)

		maxMove := 0.0
		for i := range centroids {
			if move := Distance(centroids[i], next[i]); move > maxMove {
				maxMove = move
			}
		}
		centroids = next
		res.Iterations++

		if maxMove < cfg.KMeansTolerance {
			res.Converged = true
			break
		}
	}

	assign(points, centroids, labels)
	res.Labels = labels
	res.Centroids = centroids

	log.Debug().
		Int("points", len(points)).
		Int("k", k).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Msg("Completed k-means")

	return res, nil
}

// seedCentroids places k centroids uniformly inside the bounding box of points
func seedCentroids(points []Point, k int, rng *rand.Rand) []Point {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for d := 0; d < 2; d++ {
			lo[d] = math.Min(lo[d], p[d])
			hi[d] = math.Max(hi[d], p[d])
		}
	}

	centroids := make([]Point, k)
	for i := range centroids {
		for d := 0; d < 2; d++ {
			centroids[i][d] = lo[d] + rng.Float64()*(hi[d]-lo[d])
		}
	}
	return centroids
}

// assign labels every point with its nearest centroid
func assign(points, centroids []Point, labels []int) {
	for i, p := range points {
		best := 0
		minDist := math.Inf(1)
		for j, c := range centroids {
			if d := Distance(p, c); d < minDist {
				minDist = d
				best = j
			}
		}
		labels[i] = best
	}
}

// FindNearest returns the index of the centroid closest to p
func FindNearest(p Point, centroids []Point) (int, error) {
	if len(centroids) == 0 {
		return 0, &AnalysisError{Op: "find nearest", Points: 1, Err: ErrInvalidK}
	}
	labels := make([]int, 1)
	assign([]Point{p}, centroids, labels)
	return labels[0], nil
}

// updateCentroids recomputes each centroid as the mean of its points
func updateCentroids(points []Point, labels []int, prev []Point) []Point {
	sums := make([]Point, len(prev))
	counts := make([]int, len(prev))
	for i, p := range points {
		c := labels[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		counts[c]++
	}

	next := make([]Point, len(prev))
	for i := range next {
		if counts[i] == 0 {
			next[i] = prev[i]
			continue
		}
		n := float64(counts[i])
		next[i] = Point{sums[i][0] / n, sums[i][1] / n}
	}
	return next
}
