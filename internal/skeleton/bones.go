package skeleton

import (
	"fmt"

	"rig-reorient/internal/mathutil"
)

// WorldMatrix chains local transforms up to the root: world = local × parentWorld.
func (s *Skeleton) WorldMatrix(name string) (mathutil.Mat4, error) {
	j, err := s.lookup(name)
	if err != nil {
		return mathutil.Mat4{}, err
	}

	world := j.LocalMatrix()
	seen := 0
	for p := j.Parent; p != ""; {
		if seen++; seen > len(s.joints) {
			return mathutil.Mat4{}, fmt.Errorf("skeleton: world matrix of %s: %w", name, ErrCycle)
		}
		pj, err := s.lookup(p)
		if err != nil {
			return mathutil.Mat4{}, err
		}
		world = mathutil.Mat4Mul(world, pj.LocalMatrix())
		p = pj.Parent
	}
	return world, nil
}

// WorldMatrices computes the world transform of every node, in hierarchy order.
func (s *Skeleton) WorldMatrices() map[string]mathutil.Mat4 {
	worlds := make(map[string]mathutil.Mat4, len(s.joints))
	for _, name := range s.Topological() {
		j := s.joints[name]
		local := j.LocalMatrix()
		if pw, ok := worlds[j.Parent]; ok {
			worlds[name] = mathutil.Mat4Mul(local, pw)
		} else {
			worlds[name] = local
		}
	}
	return worlds
}

// WorldPosition is the translation row of the world matrix.
func (s *Skeleton) WorldPosition(name string) (mathutil.Vec3, error) {
	m, err := s.WorldMatrix(name)
	if err != nil {
		return mathutil.Vec3{}, err
	}
	return m.Translation(), nil
}

func (s *Skeleton) parentWorld(j *Joint) (mathutil.Mat4, error) {
	if j.Parent == "" {
		return mathutil.Mat4Identity(), nil
	}
	return s.WorldMatrix(j.Parent)
}

// setLocal writes a parent-space transform into j. With keepRotate the rotate channel stays
// and the joint-orient absorbs the difference; otherwise joint-orient stays and rotate is solved.
func setLocal(j *Joint, local mathutil.Mat4, keepRotate bool) {
	j.Translate = local.Translation()
	l := local.Rotation()
	if keepRotate {
		r := mathutil.EulerToMat3(j.Rotate, j.RotateOrder)
		j.JointOrient = mathutil.Mat3ToEuler(mathutil.Mat3Mul(r.Transpose(), l), mathutil.RotateXYZ)
		return
	}
	jo := mathutil.EulerToMat3(j.JointOrient, mathutil.RotateXYZ)
	j.Rotate = mathutil.Mat3ToEuler(mathutil.Mat3Mul(l, jo.Transpose()), j.RotateOrder)
}

// SetWorldMatrix moves a node so its world transform becomes m.
// The joint-orient channel is kept and the rotate channel is solved.
func (s *Skeleton) SetWorldMatrix(name string, m mathutil.Mat4) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	pw, err := s.parentWorld(j)
	if err != nil {
		return err
	}
	setLocal(j, mathutil.Mat4Mul(m, pw.RigidInverse()), false)
	return nil
}

// SetWorldPosition moves a node without touching its rotation channels.
func (s *Skeleton) SetWorldPosition(name string, p mathutil.Vec3) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	pw, err := s.parentWorld(j)
	if err != nil {
		return err
	}
	j.Translate = pw.RigidInverse().MulPoint(p)
	return nil
}
