package orient

import (
	"fmt"
	"slices"

	"rig-reorient/internal/mathutil"
)

// flipCombos are the (aim, pole) slot pairs whose direct substitution would mirror the basis.
var flipCombos = [][2]int{{0, 1}, {1, 2}, {2, 0}}

// AimBasis builds an orthonormal orientation whose aimAxis row points along dir and whose
// poleAxis row is the component of up perpendicular to dir. Only the axis line of aimAxis and
// poleAxis matters; signs are ignored.
func AimBasis(dir, up mathutil.Vec3, aimAxis, poleAxis mathutil.Axis) (mathutil.Mat3, error) {
	ai, pi := aimAxis.Index(), poleAxis.Index()
	if ai < 0 || pi < 0 || ai == pi {
		return mathutil.Mat3{}, fmt.Errorf("orient: aim %s pole %s: %w", aimAxis, poleAxis, ErrInvalidAxisAssignment)
	}

	aim, err := dir.Normalize()
	if err != nil {
		return mathutil.Mat3{}, fmt.Errorf("orient: aim direction: %w", err)
	}
	u, err := up.Normalize()
	if err != nil {
		return mathutil.Mat3{}, fmt.Errorf("orient: up vector: %w", err)
	}
	last, err := mathutil.Cross(u, aim).Normalize()
	if err != nil {
		return mathutil.Mat3{}, fmt.Errorf("orient: up vector parallel to aim: %w", err)
	}
	pole, err := mathutil.Cross(aim, last).Normalize()
	if err != nil {
		return mathutil.Mat3{}, fmt.Errorf("orient: pole: %w", err)
	}
	if slices.Contains(flipCombos, [2]int{ai, pi}) {
		if last, err = mathutil.Cross(aim, pole).Normalize(); err != nil {
			return mathutil.Mat3{}, fmt.Errorf("orient: last axis: %w", err)
		}
	}

	var rows [3]mathutil.Vec3
	rows[ai], rows[pi] = aim, pole
	for _, slot := range []int{0, 1, 2} {
		if slot != ai && slot != pi {
			rows[slot] = last
			break
		}
	}
	return mathutil.Mat3FromRows(rows[0], rows[1], rows[2]), nil
}

// AimOptions configures AimAt and AimAlong.
type AimOptions struct {
	Up         mathutil.Vec3 // defaults to +z
	AimAxis    mathutil.Axis // defaults to x
	PoleAxis   mathutil.Axis // defaults to z
	ParentSafe bool
	// OrientJoint stores the result in joint-orient with rotate zeroed.
	OrientJoint bool
}

func (o AimOptions) withDefaults() AimOptions {
	if o.Up == (mathutil.Vec3{}) {
		o.Up = mathutil.Vec3{0, 0, 1}
	}
	if o.AimAxis == mathutil.AxisNone {
		o.AimAxis = mathutil.AxisX
	}
	if o.PoleAxis == mathutil.AxisNone {
		o.PoleAxis = mathutil.AxisZ
	}
	return o
}

// AimAt turns joint so its aim axis points at target, keeping its world position.
func AimAt(h Hierarchy, joint, target string, opts AimOptions) error {
	jp, err := h.WorldPosition(joint)
	if err != nil {
		return err
	}
	tp, err := h.WorldPosition(target)
	if err != nil {
		return err
	}
	if err := AimAlong(h, joint, tp.Sub(jp), opts); err != nil {
		return fmt.Errorf("orient: aim %s at %s: %w", joint, target, err)
	}
	return nil
}

// AimAlong turns joint so its aim axis points along dir, keeping its world position.
func AimAlong(h Hierarchy, joint string, dir mathutil.Vec3, opts AimOptions) error {
	opts = opts.withDefaults()
	basis, err := AimBasis(dir, opts.Up, opts.AimAxis, opts.PoleAxis)
	if err != nil {
		return err
	}
	pos, err := h.WorldPosition(joint)
	if err != nil {
		return err
	}
	if opts.OrientJoint {
		if err := foldChannels(h, joint); err != nil {
			return err
		}
	}
	return applyWorldRotation(h, joint, basis, pos, opts.OrientJoint, opts.ParentSafe)
}
