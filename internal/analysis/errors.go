package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPoints is returned when clustering is asked to partition an empty point set
	ErrNoPoints = errors.New("no points to cluster")

	// ErrInvalidK is returned when the requested cluster count is below one
	ErrInvalidK = errors.New("cluster count must be at least 1")
)

// AnalysisError reports a clustering request that cannot be served,
// with the cluster count and point count it was made with
type AnalysisError struct {
	Op     string // kmeans, find nearest, explore
	K      int    // requested cluster count, or centroids available
	Points int    // points to partition
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v (k=%d, points=%d)", e.Op, e.Err, e.K, e.Points)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// IsNoPoints checks if an error is a "no points" error
func IsNoPoints(err error) bool {
	return errors.Is(err, ErrNoPoints)
}

// IsInvalidK checks if an error is an "invalid k" error
func IsInvalidK(err error) bool {
	return errors.Is(err, ErrInvalidK)
}
