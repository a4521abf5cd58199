package analysis

import "gonum.org/v1/gonum/floats"

// Point is a position on the 2D projection plane
type Point [2]float64

// X returns the first coordinate
func (p Point) X() float64 { return p[0] }

// Y returns the second coordinate
func (p Point) Y() float64 { return p[1] }

// Distance computes the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return floats.Distance(a[:], b[:], 2)
}
