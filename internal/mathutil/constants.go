package mathutil

import "gonum.org/v1/gonum/floats/scalar"

// Tolerances shared by the orientation code.
const (
	// Epsilon is the default absolute tolerance for matrix and vector comparisons.
	Epsilon = 1e-6

	// AngleTieEpsilon is the window (radians) inside which two candidate angles count as a tie.
	AngleTieEpsilon = 1e-9
)

func approx(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}
