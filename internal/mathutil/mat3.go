package mathutil

import "math"

// Mat3 is a 3×3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
// As an orientation, its rows are the local x, y, z axes in the parent frame.
// Value type for zero heap allocation.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mat3FromRows builds a matrix whose rows are x, y and z.
func Mat3FromRows(x, y, z Vec3) Mat3 {
	return Mat3{
		x[0], x[1], x[2],
		y[0], y[1], y[2],
		z[0], z[1], z[2],
	}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

// Row returns row i (0..2).
func (m Mat3) Row(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// Rows returns the three rows, i.e. the x, y, z axes of an orientation.
func (m Mat3) Rows() [3]Vec3 {
	return [3]Vec3{m.Row(0), m.Row(1), m.Row(2)}
}

// MulVec3 returns M × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// IsOrthonormal reports whether the rows are unit length and mutually perpendicular within tol.
func (m Mat3) IsOrthonormal(tol float64) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	rows := m.Rows()
	for i := 0; i < 3; i++ {
		if !approx(rows[i].Len(), 1, tol) {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if !approx(rows[i].Dot(rows[j]), 0, tol) {
				return false
			}
		}
	}
	return true
}

// IsRotation is IsOrthonormal plus a positive determinant.
func (m Mat3) IsRotation(tol float64) bool {
	return m.IsOrthonormal(tol) && approx(m.Det(), 1, tol)
}

// ApproxEqual compares element-wise within tol.
func (m Mat3) ApproxEqual(o Mat3, tol float64) bool {
	for i := range m {
		if !approx(m[i], o[i], tol) {
			return false
		}
	}
	return true
}
