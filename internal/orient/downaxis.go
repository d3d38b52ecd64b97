package orient

import (
	"fmt"
	"math"

	"rig-reorient/internal/mathutil"
)

// DownAxis is the local axis of a joint that points most nearly at its child.
type DownAxis struct {
	Axis   mathutil.Axis
	Vector mathutil.Vec3 // normalized joint→child direction, world space
	Angle  float64       // radians between Vector and the axis
	Child  string
}

// SoleChild returns the only transform child of joint. ok is false for a leaf.
func SoleChild(h Hierarchy, joint string) (child string, ok bool, err error) {
	kids, err := transformChildren(h, joint)
	if err != nil {
		return "", false, err
	}
	switch len(kids) {
	case 0:
		return "", false, nil
	case 1:
		return kids[0], true, nil
	default:
		return "", false, fmt.Errorf("orient: %s has %d children: %w", joint, len(kids), ErrAmbiguousChild)
	}
}

// FindDownAxis compares the joint→child direction against the joint's six signed local axes
// and returns the closest. With child == "" the joint's sole transform child is used; a leaf
// yields ok == false. Exact ties go to the first axis in x, y, z, -x, -y, -z order.
func FindDownAxis(h Hierarchy, joint, child string) (d DownAxis, ok bool, err error) {
	if child == "" {
		c, found, err := SoleChild(h, joint)
		if err != nil || !found {
			return DownAxis{}, false, err
		}
		child = c
	}

	jp, err := h.WorldPosition(joint)
	if err != nil {
		return DownAxis{}, false, err
	}
	cp, err := h.WorldPosition(child)
	if err != nil {
		return DownAxis{}, false, err
	}
	down, err := cp.Sub(jp).Normalize()
	if err != nil {
		return DownAxis{}, false, fmt.Errorf("orient: down vector %s→%s: %w", joint, child, err)
	}

	m, err := h.WorldMatrix(joint)
	if err != nil {
		return DownAxis{}, false, err
	}
	axes := m.Axes()

	d = DownAxis{Vector: down, Child: child, Angle: math.Inf(1)}
	for _, a := range mathutil.SignedAxes {
		ang, err := mathutil.Angle(down, a.Vector(axes))
		if err != nil {
			return DownAxis{}, false, fmt.Errorf("orient: %s axis %s: %w", joint, a, err)
		}
		if ang < d.Angle {
			d.Axis, d.Angle = a, ang
		}
	}
	return d, true, nil
}
