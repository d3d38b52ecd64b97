package mathutil

import "fmt"

// Axis is a signed local axis label. The zero value is AxisNone.
type Axis int8

const (
	AxisNone Axis = iota
	AxisX
	AxisY
	AxisZ
	AxisNegX
	AxisNegY
	AxisNegZ
)

// SignedAxes lists the six signed axes in declaration order.
var SignedAxes = [6]Axis{AxisX, AxisY, AxisZ, AxisNegX, AxisNegY, AxisNegZ}

// UnsignedAxes lists the three positive axes in declaration order.
var UnsignedAxes = [3]Axis{AxisX, AxisY, AxisZ}

var axisNames = [...]string{"", "x", "y", "z", "-x", "-y", "-z"}

func (a Axis) String() string {
	if a < AxisNone || a > AxisNegZ {
		return fmt.Sprintf("Axis(%d)", int8(a))
	}
	return axisNames[a]
}

// ParseAxis accepts "x", "y", "z", "-x", "-y", "-z" and "" (AxisNone).
func ParseAxis(s string) (Axis, error) {
	for i, n := range axisNames {
		if n == s {
			return Axis(i), nil
		}
	}
	return AxisNone, fmt.Errorf("mathutil: bad axis %q: must be x, y, z, -x, -y or -z", s)
}

// AxisFromIndex returns the positive axis for slot 0, 1 or 2.
func AxisFromIndex(i int) (Axis, error) {
	if i < 0 || i > 2 {
		return AxisNone, fmt.Errorf("mathutil: bad axis index %d: must be 0, 1 or 2", i)
	}
	return UnsignedAxes[i], nil
}

func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisNegZ
}

// Index is the slot (0 x, 1 y, 2 z) of the axis line, or -1 for AxisNone.
func (a Axis) Index() int {
	if !a.Valid() {
		return -1
	}
	return int(a-AxisX) % 3
}

// Negative reports whether the label carries a minus sign.
func (a Axis) Negative() bool {
	return a >= AxisNegX && a <= AxisNegZ
}

// Sign is -1 for negative labels and 1 otherwise.
func (a Axis) Sign() float64 {
	if a.Negative() {
		return -1
	}
	return 1
}

// Abs drops the sign.
func (a Axis) Abs() Axis {
	if a.Negative() {
		return a - 3
	}
	return a
}

// Neg flips the sign.
func (a Axis) Neg() Axis {
	switch {
	case !a.Valid():
		return a
	case a.Negative():
		return a - 3
	default:
		return a + 3
	}
}

// WithSign returns the axis line of a carrying the sign of s (s < 0 means negative).
func (a Axis) WithSign(s float64) Axis {
	if !a.Valid() {
		return a
	}
	if s < 0 {
		return a.Abs().Neg()
	}
	return a.Abs()
}

// Vector picks the signed axis out of an orientation's rows.
func (a Axis) Vector(rows [3]Vec3) Vec3 {
	if !a.Valid() {
		return Vec3{}
	}
	return rows[a.Index()].Scale(a.Sign())
}
