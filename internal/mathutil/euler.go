package mathutil

import (
	"fmt"
	"math"
)

// RotateOrder is an Euler rotation ordering. Values match the host application's enum.
type RotateOrder int

const (
	RotateXYZ RotateOrder = iota
	RotateYZX
	RotateZXY
	RotateXZY
	RotateYXZ
	RotateZYX
)

var rotateOrderNames = [...]string{"xyz", "yzx", "zxy", "xzy", "yxz", "zyx"}

// axis indices in application order (first, second, third) and whether the permutation is odd.
var rotateOrderAxes = [...]struct {
	i, j, k int
	odd     bool
}{
	RotateXYZ: {0, 1, 2, false},
	RotateYZX: {1, 2, 0, false},
	RotateZXY: {2, 0, 1, false},
	RotateXZY: {0, 2, 1, true},
	RotateYXZ: {1, 0, 2, true},
	RotateZYX: {2, 1, 0, true},
}

func (o RotateOrder) Valid() bool {
	return o >= RotateXYZ && o <= RotateZYX
}

func (o RotateOrder) String() string {
	if !o.Valid() {
		return fmt.Sprintf("RotateOrder(%d)", int(o))
	}
	return rotateOrderNames[o]
}

// ParseRotateOrder accepts "xyz", "zyx", etc.
func ParseRotateOrder(s string) (RotateOrder, error) {
	for i, n := range rotateOrderNames {
		if n == s {
			return RotateOrder(i), nil
		}
	}
	return 0, fmt.Errorf("mathutil: unknown rotate order %q", s)
}

// EulerToMat3 converts Euler angles in degrees (per-axis x, y, z) into a row-convention
// orientation matrix: rows are the rotated axes. The first axis of the order is applied first.
func EulerToMat3(deg Vec3, order RotateOrder) Mat3 {
	if !order.Valid() {
		order = RotateXYZ
	}
	a := rotateOrderAxes[order]
	c := Mat3Mul(Mat3Mul(
		axisRot(a.k, Deg2Rad(deg[a.k])),
		axisRot(a.j, Deg2Rad(deg[a.j]))),
		axisRot(a.i, Deg2Rad(deg[a.i])))
	return c.Transpose()
}

// Mat3ToEuler decomposes a row-convention rotation into Euler angles in degrees.
func Mat3ToEuler(m Mat3, order RotateOrder) Vec3 {
	if !order.Valid() {
		order = RotateXYZ
	}
	a := rotateOrderAxes[order]
	c := m.Transpose()
	at := func(r, col int) float64 { return c[r*3+col] }

	i, j, k := a.i, a.j, a.k
	var ax, ay, az float64
	cy := math.Hypot(at(i, i), at(j, i))
	if cy > 1e-9 {
		ax = math.Atan2(at(k, j), at(k, k))
		ay = math.Atan2(-at(k, i), cy)
		az = math.Atan2(at(j, i), at(i, i))
	} else {
		ax = math.Atan2(-at(j, k), at(j, j))
		ay = math.Atan2(-at(k, i), cy)
		az = 0
	}
	if a.odd {
		ax, ay, az = -ax, -ay, -az
	}

	var out Vec3
	out[i] = Rad2Deg(ax)
	out[j] = Rad2Deg(ay)
	out[k] = Rad2Deg(az)
	return out
}
