package orient

import (
	"fmt"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/skeleton"
)

// CopyOrient gives joint the world orientation of reference, keeping joint's world position.
// No axis reconciliation is done.
func CopyOrient(h Hierarchy, reference, joint string, parentSafe bool) error {
	rm, err := h.WorldMatrix(reference)
	if err != nil {
		return err
	}
	pos, err := h.WorldPosition(joint)
	if err != nil {
		return err
	}
	orientJoint, err := isJoint(h, joint)
	if err != nil {
		return err
	}
	if orientJoint {
		if err := foldChannels(h, joint); err != nil {
			return err
		}
	}
	if err := applyWorldRotation(h, joint, rm.Rotation(), pos, orientJoint, parentSafe); err != nil {
		return fmt.Errorf("orient: copy %s to %s: %w", reference, joint, err)
	}
	return nil
}

func isJoint(h Hierarchy, name string) (bool, error) {
	k, err := h.Kind(name)
	if err != nil {
		return false, err
	}
	return k == skeleton.KindJoint, nil
}

// CopyOptions configures SmartCopyOrient.
type CopyOptions struct {
	// ReferenceChild and JointChild name the nodes to aim down; "" infers the sole child.
	ReferenceChild string
	JointChild     string
	ParentSafe     bool
	Match          MatchOptions
	LegacyZSource  bool
}

// SmartResult describes what SmartCopyOrient matched and applied.
type SmartResult struct {
	ReferenceDown DownAxis
	JointDown     DownAxis
	Pole          Match
	Aim           Swap
	PoleSwap      Swap
}

// Swaps derives the two swaps that relabel a joint's axes to follow a reference.
// The joint's down axis line feeds the reference's down slot, signed so both point at their
// children, and the pole match feeds the reference's matched slot the same way.
func Swaps(refDown, jointDown mathutil.Axis, pole Match) (aim, poleSwap Swap) {
	aim = Swap{
		From: jointDown.WithSign(refDown.Sign() * jointDown.Sign()),
		To:   refDown.Abs(),
	}
	poleSwap = Swap{
		From: pole.Target.WithSign(pole.Source.Sign()),
		To:   pole.Source.Abs(),
	}
	return aim, poleSwap
}

// SmartCopyOrient relabels joint's axes so they line up with reference's convention: the axis
// pointing down the bone and the axis closest to the reference's side axis take the reference's
// labels, and the third is rebuilt. Joint keeps its world position. ErrNoDownAxis is returned
// when either node has no child to aim down.
func SmartCopyOrient(h Hierarchy, reference, joint string, opts CopyOptions) (SmartResult, error) {
	var res SmartResult

	rd, ok, err := FindDownAxis(h, reference, opts.ReferenceChild)
	if err != nil {
		return res, fmt.Errorf("orient: down axis of %s: %w", reference, err)
	}
	if !ok {
		return res, fmt.Errorf("orient: %s: %w", reference, ErrNoDownAxis)
	}
	jd, ok, err := FindDownAxis(h, joint, opts.JointChild)
	if err != nil {
		return res, fmt.Errorf("orient: down axis of %s: %w", joint, err)
	}
	if !ok {
		return res, fmt.Errorf("orient: %s: %w", joint, ErrNoDownAxis)
	}
	res.ReferenceDown, res.JointDown = rd, jd

	pole, err := MatchAxes(h, reference, joint, rd.Axis, jd.Axis, opts.Match)
	if err != nil {
		return res, err
	}
	res.Pole = pole
	res.Aim, res.PoleSwap = Swaps(rd.Axis, jd.Axis, pole)

	orientJoint, err := isJoint(h, joint)
	if err != nil {
		return res, err
	}
	err = SwapAxis(h, joint, res.Aim, res.PoleSwap, SwapOptions{
		OrientJoint:   orientJoint,
		ParentSafe:    opts.ParentSafe,
		LegacyZSource: opts.LegacyZSource,
	})
	return res, err
}

// MatchPosition moves joint onto reference's world position without changing its orientation.
func MatchPosition(h Hierarchy, reference, joint string, parentSafe bool) error {
	rp, err := h.WorldPosition(reference)
	if err != nil {
		return err
	}
	jm, err := h.WorldMatrix(joint)
	if err != nil {
		return err
	}
	return withChildrenDetached(h, joint, parentSafe, func() error {
		if err := h.SetWorldMatrix(joint, mathutil.FromMat3Translation(jm.Rotation(), rp)); err != nil {
			return fmt.Errorf("orient: move %s to %s: %w", joint, reference, err)
		}
		return nil
	})
}
