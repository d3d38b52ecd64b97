package orient

import (
	"fmt"
	"math"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/skeleton"
)

// Swap feeds an old local axis into a new row: row To becomes old axis From.
// A negative To negates the fed axis. AxisNone on either side leaves the pair unused.
type Swap struct {
	From mathutil.Axis
	To   mathutil.Axis
}

func (s Swap) String() string {
	return fmt.Sprintf("%s→%s", s.From, s.To)
}

func (s Swap) used() bool {
	return s.From.Valid() && s.To.Valid()
}

// SwapOptions controls how SwapAxis writes the rebuilt orientation.
type SwapOptions struct {
	// OrientJoint routes the result through the joint-orient channel, leaving rotate at zero.
	OrientJoint bool
	// ParentSafe detaches transform children for the duration so they keep their world placement.
	ParentSafe bool
	// LegacyZSource feeds the old y axis into a row asked to take old z, as early rigs expect.
	LegacyZSource bool
}

// ReconstructBasis rebuilds an orientation from two swaps over the current axes.
// The row left unassigned is the right-handed cross product of the other two.
// When both swaps target the same row the later one wins.
func ReconstructBasis(axes [3]mathutil.Vec3, aim, pole Swap, legacyZ bool) (mathutil.Mat3, error) {
	var rows [3]mathutil.Vec3
	var set [3]bool
	for _, sw := range [2]Swap{aim, pole} {
		if !sw.used() {
			continue
		}
		slot := sw.To.Index()
		v := sw.From.Vector(axes)
		if legacyZ && slot == 2 && sw.From == mathutil.AxisZ {
			v = axes[1]
		}
		if sw.To.Negative() {
			v = v.Neg()
		}
		rows[slot], set[slot] = v, true
	}

	n := 0
	for _, s := range set {
		if s {
			n++
		}
	}
	if n < 2 {
		return mathutil.Mat3{}, fmt.Errorf("orient: swaps %s, %s: %w", aim, pole, ErrInsufficientAxes)
	}

	for i := range rows {
		if !set[i] {
			continue
		}
		v, err := rows[i].Normalize()
		if err != nil {
			return mathutil.Mat3{}, fmt.Errorf("orient: row %d: %w", i, err)
		}
		rows[i] = v
	}
	for i := range rows {
		if set[i] {
			continue
		}
		// x = y×z, y = z×x, z = x×y
		v, err := mathutil.Cross(rows[(i+1)%3], rows[(i+2)%3]).Normalize()
		if err != nil {
			return mathutil.Mat3{}, fmt.Errorf("orient: derived row %d from parallel axes: %w", i, err)
		}
		rows[i] = v
	}
	return mathutil.Mat3FromRows(rows[0], rows[1], rows[2]), nil
}

// foldChannels collapses rotate into joint-orient so one matrix describes the local orientation.
func foldChannels(h Hierarchy, joint string) error {
	ch, err := h.Channels(joint)
	if err != nil {
		return err
	}
	if !ch.RotateOrder.Valid() || !finite(ch.JointOrient) || !finite(ch.Rotate) {
		return fmt.Errorf("orient: %s channels %+v: %w", joint, ch, ErrInvalidJointState)
	}
	m := ch.Matrix()
	if !m.IsRotation(mathutil.Epsilon) {
		return fmt.Errorf("orient: %s local orientation is not a rotation: %w", joint, ErrInvalidJointState)
	}
	return h.SetChannels(joint, skeleton.Channels{
		JointOrient: mathutil.Mat3ToEuler(m, mathutil.RotateXYZ),
		RotateOrder: ch.RotateOrder,
	})
}

func finite(v mathutil.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SwapAxis rebuilds joint's world orientation from its own axes per the two swaps and
// writes it back at the same world position.
func SwapAxis(h Hierarchy, joint string, aim, pole Swap, opts SwapOptions) error {
	if opts.OrientJoint {
		if err := foldChannels(h, joint); err != nil {
			return err
		}
	}

	world, err := h.WorldMatrix(joint)
	if err != nil {
		return err
	}
	basis, err := ReconstructBasis(world.Axes(), aim, pole, opts.LegacyZSource)
	if err != nil {
		return fmt.Errorf("orient: swap axis %s: %w", joint, err)
	}

	return applyWorldRotation(h, joint, basis, world.Translation(), opts.OrientJoint, opts.ParentSafe)
}

// applyWorldRotation writes a world orientation at pos, with children optionally detached,
// then optionally folds the result back into joint-orient.
func applyWorldRotation(h Hierarchy, joint string, basis mathutil.Mat3, pos mathutil.Vec3, orientJoint, parentSafe bool) error {
	return withChildrenDetached(h, joint, parentSafe, func() error {
		if err := h.SetWorldMatrix(joint, mathutil.FromMat3Translation(basis, pos)); err != nil {
			return fmt.Errorf("orient: set %s: %w", joint, err)
		}
		if orientJoint {
			return foldChannels(h, joint)
		}
		return nil
	})
}
