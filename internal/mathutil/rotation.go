package mathutil

import "math"

// RotX, RotY and RotZ return column-vector rotations: M.MulVec3(v) turns v by a radians
// counter-clockwise about the axis. Their transpose is the row-convention orientation of a
// node turned by the same angle, with the rotated axes as rows. EulerToMat3 builds the product
// in column form and transposes once at the end.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// axisRot is the column-vector rotation about slot 0, 1 or 2.
func axisRot(slot int, rad float64) Mat3 {
	switch slot {
	case 0:
		return RotX(rad)
	case 1:
		return RotY(rad)
	default:
		return RotZ(rad)
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
