package mathutil

import (
	"errors"
	"math"
)

// ErrDegenerateVector is returned when a vector too short to have a direction is normalised.
var ErrDegenerateVector = errors.New("degenerate vector")

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize returns the unit vector in the direction of v.
func (v Vec3) Normalize() (Vec3, error) {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) {
		return Vec3{}, ErrDegenerateVector
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}, nil
}

// Cross is the free-function form of a.Cross(b).
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// Angle returns the angle between a and b in radians, in [0, π].
// Vectors that are identical after normalisation report exactly 0.
func Angle(a, b Vec3) (float64, error) {
	na, err := a.Normalize()
	if err != nil {
		return 0, err
	}
	nb, err := b.Normalize()
	if err != nil {
		return 0, err
	}
	if na.ApproxEqual(nb, 1e-9) {
		return 0, nil
	}
	d := na.Dot(nb)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d), nil
}

// AngleDeg is Angle in degrees, in [0, 180].
func AngleDeg(a, b Vec3) (float64, error) {
	r, err := Angle(a, b)
	if err != nil {
		return 0, err
	}
	return Rad2Deg(r), nil
}

// ApproxEqual compares component-wise within tol.
func (a Vec3) ApproxEqual(b Vec3, tol float64) bool {
	for i := 0; i < 3; i++ {
		if !approx(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
