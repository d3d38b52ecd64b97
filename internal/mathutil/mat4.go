package mathutil

// Mat4 is a 4×4 homogeneous matrix stored row-major in row-vector convention:
// rows 0–2 hold the x, y, z axes (column 3 zero), row 3 holds the translation and a 1.
// Points transform as p' = p × M, and world = local × parentWorld.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Compose builds a matrix from three axis rows and a translation.
func Compose(x, y, z, t Vec3) Mat4 {
	return Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Compose(r.Row(0), r.Row(1), r.Row(2), t)
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the matrix: p × M.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		v[0]*m[0] + v[1]*m[4] + v[2]*m[8] + m[12],
		v[0]*m[1] + v[1]*m[5] + v[2]*m[9] + m[13],
		v[0]*m[2] + v[1]*m[6] + v[2]*m[10] + m[14],
	}
}

// Axes returns the x, y and z axis rows.
func (m Mat4) Axes() [3]Vec3 {
	return [3]Vec3{
		{m[0], m[1], m[2]},
		{m[4], m[5], m[6]},
		{m[8], m[9], m[10]},
	}
}

// Translation returns row 3.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Rotation returns the upper-left 3×3 block.
func (m Mat4) Rotation() Mat3 {
	a := m.Axes()
	return Mat3FromRows(a[0], a[1], a[2])
}

// Decompose splits m into its axis rows and translation.
func (m Mat4) Decompose() (x, y, z, t Vec3) {
	a := m.Axes()
	return a[0], a[1], a[2], m.Translation()
}

// RigidInverse inverts a rotation+translation matrix.
func (m Mat4) RigidInverse() Mat4 {
	rt := m.Rotation().Transpose()
	t := m.Translation()
	// -t × Rᵀ
	it := Vec3{
		-(t[0]*rt[0] + t[1]*rt[3] + t[2]*rt[6]),
		-(t[0]*rt[1] + t[1]*rt[4] + t[2]*rt[7]),
		-(t[0]*rt[2] + t[1]*rt[5] + t[2]*rt[8]),
	}
	return FromMat3Translation(rt, it)
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	return m.ApproxEqual(Mat4Identity(), 1e-8)
}

// ApproxEqual compares element-wise within tol.
func (m Mat4) ApproxEqual(o Mat4, tol float64) bool {
	for i := range m {
		if !approx(m[i], o[i], tol) {
			return false
		}
	}
	return true
}
