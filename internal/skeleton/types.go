package skeleton

import (
	"errors"

	"rig-reorient/internal/mathutil"
)

var (
	// ErrUnknownJoint is returned when a name does not resolve to a node.
	ErrUnknownJoint = errors.New("unknown joint")
	// ErrCycle is returned when a reparent would make a node its own ancestor.
	ErrCycle = errors.New("hierarchy cycle")
	// ErrDuplicateJoint is returned when a name is already taken.
	ErrDuplicateJoint = errors.New("duplicate joint")
)

// Kind classifies a node for down-axis purposes.
type Kind int

const (
	KindJoint Kind = iota
	KindTransform
	// KindOther covers shapes, constraints and anything that cannot act as a bone child.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindJoint:
		return "joint"
	case KindTransform:
		return "transform"
	default:
		return "other"
	}
}

// Transformable reports whether the node carries its own transform.
func (k Kind) Transformable() bool {
	return k == KindJoint || k == KindTransform
}

// KindFromNodeType maps an importer node type. An empty type is treated as a joint.
func KindFromNodeType(t string) Kind {
	switch t {
	case "", "joint":
		return KindJoint
	case "transform":
		return KindTransform
	default:
		return KindOther
	}
}

// Channels holds the two rotation fields of a joint, in degrees.
// JointOrient always uses the xyz order, Rotate uses RotateOrder.
type Channels struct {
	JointOrient mathutil.Vec3
	Rotate      mathutil.Vec3
	RotateOrder mathutil.RotateOrder
}

// Matrix composes the channels into the local orientation: rotate × jointOrient.
func (c Channels) Matrix() mathutil.Mat3 {
	return mathutil.Mat3Mul(
		mathutil.EulerToMat3(c.Rotate, c.RotateOrder),
		mathutil.EulerToMat3(c.JointOrient, mathutil.RotateXYZ),
	)
}

// Joint is one node of the hierarchy. Translate is local to the parent.
type Joint struct {
	Name        string
	Kind        Kind
	Parent      string
	Children    []string
	Translate   mathutil.Vec3
	JointOrient mathutil.Vec3
	Rotate      mathutil.Vec3
	RotateOrder mathutil.RotateOrder
}

// Channels returns the rotation fields of j.
func (j *Joint) Channels() Channels {
	return Channels{JointOrient: j.JointOrient, Rotate: j.Rotate, RotateOrder: j.RotateOrder}
}

// LocalMatrix is the joint's transform in its parent's space.
func (j *Joint) LocalMatrix() mathutil.Mat4 {
	return mathutil.FromMat3Translation(j.Channels().Matrix(), j.Translate)
}
