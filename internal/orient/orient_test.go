package orient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/skeleton"
)

var (
	rowsDownY = mathutil.Mat3FromRows(
		mathutil.Vec3{0, 1, 0},
		mathutil.Vec3{1, 0, 0},
		mathutil.Vec3{0, 0, -1},
	)
	testRotations = []mathutil.Mat3{
		mathutil.Mat3Identity(),
		rowsDownY,
		mathutil.EulerToMat3(mathutil.Vec3{30, -60, 15}, mathutil.RotateXYZ),
		mathutil.EulerToMat3(mathutil.Vec3{-120, 45, 170}, mathutil.RotateZYX),
	}
)

// addChain places prefix+root/mid/tip along +x world from origin, with root oriented by rot.
func addChain(t *testing.T, s *skeleton.Skeleton, prefix string, origin mathutil.Vec3, rot mathutil.Mat3) {
	t.Helper()
	jo := mathutil.Mat3ToEuler(rot, mathutil.RotateXYZ)
	require.NoError(t, s.AddJointAt(prefix+"root", skeleton.KindJoint, "", origin, skeleton.Channels{JointOrient: jo}))
	require.NoError(t, s.AddJointAt(prefix+"mid", skeleton.KindJoint, prefix+"root", origin.Add(mathutil.Vec3{2, 0, 0}), skeleton.Channels{}))
	require.NoError(t, s.AddJointAt(prefix+"tip", skeleton.KindJoint, prefix+"mid", origin.Add(mathutil.Vec3{4, 0, 0}), skeleton.Channels{}))
}

func worldRot(t *testing.T, h Hierarchy, name string) mathutil.Mat3 {
	t.Helper()
	m, err := h.WorldMatrix(name)
	require.NoError(t, err)
	return m.Rotation()
}

func worldPos(t *testing.T, h Hierarchy, name string) mathutil.Vec3 {
	t.Helper()
	p, err := h.WorldPosition(name)
	require.NoError(t, err)
	return p
}

func TestFindDownAxis(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "a_", mathutil.Vec3{}, mathutil.Mat3Identity())
	addChain(t, s, "b_", mathutil.Vec3{0, 0, 5}, rowsDownY)
	addChain(t, s, "c_", mathutil.Vec3{0, 0, 10}, mathutil.EulerToMat3(mathutil.Vec3{0, 0, 180}, mathutil.RotateXYZ))

	tests := []struct {
		joint string
		want  mathutil.Axis
	}{
		{"a_root", mathutil.AxisX},
		{"b_root", mathutil.AxisY},
		{"c_root", mathutil.AxisNegX},
	}
	for _, tt := range tests {
		d, ok, err := FindDownAxis(s, tt.joint, "")
		require.NoError(t, err, tt.joint)
		require.True(t, ok, tt.joint)
		assert.Equal(t, tt.want, d.Axis, tt.joint)
		assert.InDelta(t, 0, d.Angle, 1e-9, tt.joint)

		// the down vector is colinear with joint→child
		ang, err := mathutil.AngleDeg(d.Vector, mathutil.Vec3{1, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, 0, ang, 1e-6)
	}
}

func TestFindDownAxisLeafAndAmbiguous(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())

	_, ok, err := FindDownAxis(s, "tip", "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddJointAt("side", skeleton.KindJoint, "root", mathutil.Vec3{0, 2, 0}, skeleton.Channels{}))
	_, _, err = FindDownAxis(s, "root", "")
	assert.ErrorIs(t, err, ErrAmbiguousChild)

	d, ok, err := FindDownAxis(s, "root", "side")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mathutil.AxisY, d.Axis)
	assert.Equal(t, "side", d.Child)
}

func TestFindDownAxisIgnoresShapes(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())
	require.NoError(t, s.AddJoint(skeleton.Joint{Name: "rootShape", Kind: skeleton.KindOther, Parent: "root"}))

	d, ok, err := FindDownAxis(s, "root", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mid", d.Child)
}

func TestFindDownAxisDegenerate(t *testing.T) {
	s := skeleton.New()
	require.NoError(t, s.AddJoint(skeleton.Joint{Name: "a"}))
	require.NoError(t, s.AddJoint(skeleton.Joint{Name: "b", Parent: "a"}))
	_, _, err := FindDownAxis(s, "a", "")
	assert.ErrorIs(t, err, mathutil.ErrDegenerateVector)
}

func TestClosestAxis(t *testing.T) {
	ident := mathutil.Mat3Identity().Rows()

	m, err := ClosestAxis(ident, rowsDownY.Rows(), mathutil.AxisX, mathutil.AxisY, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, mathutil.AxisY, m.Source)
	assert.Equal(t, mathutil.AxisX, m.Target)
	assert.Equal(t, mathutil.Vec3{0, 1, 0}, m.Vector)
	assert.InDelta(t, 0, m.Angle, 1e-12)
	assert.False(t, m.Ambiguous)

	// the excluded target line is never returned, whatever its sign
	m, err = ClosestAxis(ident, ident, mathutil.AxisNone, mathutil.AxisNegX, MatchOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, mathutil.AxisX, m.Target)
	assert.Equal(t, mathutil.AxisY, m.Source)
}

func TestClosestAxisMirrorExclusion(t *testing.T) {
	ident := mathutil.Mat3Identity().Rows()
	// the target's y axis lies along the source's -x
	target := [3]mathutil.Vec3{{0, 0, 1}, {-1, 0, 0}, {0, -1, 0}}

	m, err := ClosestAxis(ident, target, mathutil.AxisX, mathutil.AxisX, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, mathutil.AxisNegX, m.Source, "only the signed exclusion is dropped")
	assert.Equal(t, mathutil.AxisY, m.Target)

	m, err = ClosestAxis(ident, target, mathutil.AxisX, mathutil.AxisX, MatchOptions{ExcludeMirror: true})
	require.NoError(t, err)
	assert.Equal(t, mathutil.AxisNegY, m.Source)
	assert.Equal(t, mathutil.AxisZ, m.Target)
}

func TestClosestAxisAmbiguous(t *testing.T) {
	ident := mathutil.Mat3Identity().Rows()
	diag := mathutil.EulerToMat3(mathutil.Vec3{0, 0, 45}, mathutil.RotateXYZ).Rows()

	m, err := ClosestAxis(ident, diag, mathutil.AxisZ, mathutil.AxisZ, MatchOptions{})
	require.NoError(t, err)
	assert.True(t, m.Ambiguous)
	assert.Equal(t, mathutil.AxisX, m.Source, "first found wins")
	assert.Equal(t, mathutil.AxisX, m.Target)
	assert.InDelta(t, 45, mathutil.Rad2Deg(m.Angle), 1e-9)
}

func TestReconstructBasisOrthonormal(t *testing.T) {
	slots := mathutil.SignedAxes
	for _, rot := range testRotations {
		axes := rot.Rows()
		for _, a := range slots {
			for _, b := range slots {
				if a.Index() == b.Index() {
					continue
				}
				for _, from := range [][2]mathutil.Axis{{mathutil.AxisX, mathutil.AxisY}, {mathutil.AxisNegZ, mathutil.AxisX}, {mathutil.AxisY, mathutil.AxisNegZ}} {
					m, err := ReconstructBasis(axes, Swap{From: from[0], To: a}, Swap{From: from[1], To: b}, false)
					require.NoError(t, err)
					assert.True(t, m.IsRotation(1e-9), "to %s,%s from %v", a, b, from)
				}
			}
		}
	}
}

func TestReconstructBasisIdentitySwap(t *testing.T) {
	for _, rot := range testRotations {
		for _, pair := range [][2]mathutil.Axis{{mathutil.AxisX, mathutil.AxisY}, {mathutil.AxisY, mathutil.AxisZ}, {mathutil.AxisZ, mathutil.AxisX}} {
			m, err := ReconstructBasis(rot.Rows(),
				Swap{From: pair[0], To: pair[0]},
				Swap{From: pair[1], To: pair[1]}, false)
			require.NoError(t, err)
			assert.True(t, m.ApproxEqual(rot, 1e-9))
		}
	}
}

func TestReconstructBasisErrors(t *testing.T) {
	axes := mathutil.Mat3Identity().Rows()

	_, err := ReconstructBasis(axes, Swap{From: mathutil.AxisX, To: mathutil.AxisX}, Swap{}, false)
	assert.ErrorIs(t, err, ErrInsufficientAxes)

	// both swaps on one slot: the later wins and only one slot is set
	_, err = ReconstructBasis(axes,
		Swap{From: mathutil.AxisX, To: mathutil.AxisY},
		Swap{From: mathutil.AxisZ, To: mathutil.AxisY}, false)
	assert.ErrorIs(t, err, ErrInsufficientAxes)

	_, err = ReconstructBasis(axes,
		Swap{From: mathutil.AxisX, To: mathutil.AxisX},
		Swap{From: mathutil.AxisNegX, To: mathutil.AxisY}, false)
	assert.ErrorIs(t, err, mathutil.ErrDegenerateVector)
}

func TestReconstructBasisNegativeTarget(t *testing.T) {
	axes := mathutil.Mat3Identity().Rows()
	m, err := ReconstructBasis(axes,
		Swap{From: mathutil.AxisY, To: mathutil.AxisNegX},
		Swap{From: mathutil.AxisX, To: mathutil.AxisY}, false)
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{0, -1, 0}, m.Row(0))
	assert.Equal(t, mathutil.Vec3{1, 0, 0}, m.Row(1))
	assert.True(t, m.IsRotation(1e-12))
}

func TestReconstructBasisLegacyZ(t *testing.T) {
	axes := mathutil.Mat3Identity().Rows()
	aim := Swap{From: mathutil.AxisX, To: mathutil.AxisX}
	pole := Swap{From: mathutil.AxisZ, To: mathutil.AxisZ}

	m, err := ReconstructBasis(axes, aim, pole, false)
	require.NoError(t, err)
	assert.True(t, m.ApproxEqual(mathutil.Mat3Identity(), 1e-12))

	m, err = ReconstructBasis(axes, aim, pole, true)
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{0, 1, 0}, m.Row(2))
}

func TestAimBasis(t *testing.T) {
	m, err := AimBasis(mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 1, 0}, mathutil.AxisX, mathutil.AxisY)
	require.NoError(t, err)
	assert.True(t, m.Row(0).ApproxEqual(mathutil.Vec3{1, 0, 0}, 1e-12))
	assert.True(t, m.IsOrthonormal(1e-12))
}

func TestAimBasisAllPairsRightHanded(t *testing.T) {
	dir := mathutil.Vec3{1, 2, -0.5}
	up := mathutil.Vec3{0.2, 0.1, 1}
	aimDir, err := dir.Normalize()
	require.NoError(t, err)

	for _, a := range mathutil.UnsignedAxes {
		for _, p := range mathutil.UnsignedAxes {
			m, err := AimBasis(dir, up, a, p)
			if a == p {
				assert.ErrorIs(t, err, ErrInvalidAxisAssignment)
				continue
			}
			require.NoError(t, err)
			assert.True(t, m.IsRotation(1e-9), "aim %s pole %s", a, p)
			assert.True(t, m.Row(a.Index()).ApproxEqual(aimDir, 1e-9))
			// the pole row leans toward up
			assert.Greater(t, m.Row(p.Index()).Dot(up), 0.0)
		}
	}
}

func TestAimBasisErrors(t *testing.T) {
	_, err := AimBasis(mathutil.Vec3{0, 0, 1}, mathutil.Vec3{0, 0, 2}, mathutil.AxisX, mathutil.AxisY)
	assert.ErrorIs(t, err, mathutil.ErrDegenerateVector)

	_, err = AimBasis(mathutil.Vec3{}, mathutil.Vec3{0, 0, 1}, mathutil.AxisX, mathutil.AxisY)
	assert.ErrorIs(t, err, mathutil.ErrDegenerateVector)

	_, err = AimBasis(mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, 1}, mathutil.AxisY, mathutil.AxisNegY)
	assert.ErrorIs(t, err, ErrInvalidAxisAssignment)
}

func TestAimAtKeepsChildren(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())
	require.NoError(t, s.AddJointAt("goal", skeleton.KindTransform, "", mathutil.Vec3{0, 3, 0}, skeleton.Channels{}))
	before := worldPos(t, s, "mid")

	require.NoError(t, AimAt(s, "root", "goal", AimOptions{ParentSafe: true, OrientJoint: true}))
	r := worldRot(t, s, "root")
	assert.True(t, r.Row(0).ApproxEqual(mathutil.Vec3{0, 1, 0}, 1e-9))
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(before, 1e-9))
	assert.True(t, worldPos(t, s, "root").ApproxEqual(mathutil.Vec3{}, 1e-12))

	ch, err := s.Channels("root")
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{}, ch.Rotate)

	kids, err := s.Children("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, kids)
}

func TestAimAlongWithoutParentSafeMovesChildren(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())
	require.NoError(t, AimAlong(s, "root", mathutil.Vec3{0, 1, 0}, AimOptions{}))
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(mathutil.Vec3{0, 2, 0}, 1e-9))
}

func TestSwapAxisOrientJoint(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{1, 2, 3}, mathutil.Mat3Identity())
	require.NoError(t, s.SetChannels("root", skeleton.Channels{
		JointOrient: mathutil.Vec3{10, 0, 0},
		Rotate:      mathutil.Vec3{0, 0, 20},
		RotateOrder: mathutil.RotateYXZ,
	}))
	before := worldRot(t, s, "root")
	tipBefore := worldPos(t, s, "tip")

	err := SwapAxis(s, "root",
		Swap{From: mathutil.AxisY, To: mathutil.AxisX},
		Swap{From: mathutil.AxisX, To: mathutil.AxisY},
		SwapOptions{OrientJoint: true, ParentSafe: true})
	require.NoError(t, err)

	after := worldRot(t, s, "root")
	assert.True(t, after.Row(0).ApproxEqual(before.Row(1), 1e-9))
	assert.True(t, after.Row(1).ApproxEqual(before.Row(0), 1e-9))
	assert.True(t, after.Row(2).ApproxEqual(before.Row(2).Neg(), 1e-9))
	assert.True(t, worldPos(t, s, "tip").ApproxEqual(tipBefore, 1e-9))
	assert.True(t, worldPos(t, s, "root").ApproxEqual(mathutil.Vec3{1, 2, 3}, 1e-9))

	ch, err := s.Channels("root")
	require.NoError(t, err)
	assert.True(t, ch.Rotate.ApproxEqual(mathutil.Vec3{}, 1e-9))
	assert.Equal(t, mathutil.RotateYXZ, ch.RotateOrder)
}

func TestSwapAxisInvalidState(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())
	require.NoError(t, s.SetChannels("root", skeleton.Channels{RotateOrder: mathutil.RotateOrder(9)}))

	err := SwapAxis(s, "root",
		Swap{From: mathutil.AxisX, To: mathutil.AxisX},
		Swap{From: mathutil.AxisY, To: mathutil.AxisY},
		SwapOptions{OrientJoint: true})
	assert.ErrorIs(t, err, ErrInvalidJointState)
}

// failingHierarchy fails SetWorldMatrix for one node to exercise the reattach path.
type failingHierarchy struct {
	*skeleton.Skeleton
	fail string
}

var errInjected = errors.New("injected")

func (f failingHierarchy) SetWorldMatrix(name string, m mathutil.Mat4) error {
	if name == f.fail {
		return errInjected
	}
	return f.Skeleton.SetWorldMatrix(name, m)
}

func TestSwapAxisReattachesOnFailure(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "", mathutil.Vec3{}, mathutil.Mat3Identity())
	h := failingHierarchy{Skeleton: s, fail: "root"}

	err := SwapAxis(h, "root",
		Swap{From: mathutil.AxisY, To: mathutil.AxisX},
		Swap{From: mathutil.AxisX, To: mathutil.AxisY},
		SwapOptions{ParentSafe: true})
	assert.ErrorIs(t, err, errInjected)

	kids, err := s.Children("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, kids)
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(mathutil.Vec3{2, 0, 0}, 1e-9))
}

func TestSmartCopyOrientChain(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "ref_", mathutil.Vec3{0, 0, 5}, mathutil.Mat3Identity())
	addChain(t, s, "", mathutil.Vec3{}, rowsDownY)
	midBefore := worldPos(t, s, "mid")
	tipBefore := worldPos(t, s, "tip")

	res, err := SmartCopyOrient(s, "ref_root", "root", CopyOptions{ParentSafe: true})
	require.NoError(t, err)
	assert.Equal(t, mathutil.AxisX, res.ReferenceDown.Axis)
	assert.Equal(t, mathutil.AxisY, res.JointDown.Axis)
	assert.False(t, res.Pole.Ambiguous)
	assert.Equal(t, Swap{From: mathutil.AxisY, To: mathutil.AxisX}, res.Aim)
	assert.Equal(t, Swap{From: mathutil.AxisX, To: mathutil.AxisY}, res.PoleSwap)

	assert.True(t, worldRot(t, s, "root").ApproxEqual(mathutil.Mat3Identity(), 1e-9))
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(midBefore, 1e-9))
	assert.True(t, worldPos(t, s, "tip").ApproxEqual(tipBefore, 1e-9))

	// the re-oriented root now reports the reference's down axis
	d, ok, err := FindDownAxis(s, "root", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mathutil.AxisX, d.Axis)
}

func TestSmartCopyOrientSignedDown(t *testing.T) {
	s := skeleton.New()
	// reference aims -x down the bone
	addChain(t, s, "ref_", mathutil.Vec3{0, 0, 5}, mathutil.EulerToMat3(mathutil.Vec3{0, 0, 180}, mathutil.RotateXYZ))
	addChain(t, s, "", mathutil.Vec3{}, mathutil.EulerToMat3(mathutil.Vec3{25, 0, 0}, mathutil.RotateXYZ))

	res, err := SmartCopyOrient(s, "ref_root", "root", CopyOptions{ParentSafe: true})
	require.NoError(t, err)
	assert.Equal(t, mathutil.AxisNegX, res.ReferenceDown.Axis)

	d, ok, err := FindDownAxis(s, "root", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mathutil.AxisNegX, d.Axis)
	assert.True(t, worldRot(t, s, "root").IsRotation(1e-9))
}

func TestSmartCopyOrientNoDownAxis(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "ref_", mathutil.Vec3{}, mathutil.Mat3Identity())
	addChain(t, s, "", mathutil.Vec3{0, 0, 5}, rowsDownY)

	_, err := SmartCopyOrient(s, "ref_tip", "root", CopyOptions{})
	assert.ErrorIs(t, err, ErrNoDownAxis)
}

func TestCopyOrient(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "ref_", mathutil.Vec3{0, 0, 5}, mathutil.EulerToMat3(mathutil.Vec3{0, 90, 0}, mathutil.RotateXYZ))
	addChain(t, s, "", mathutil.Vec3{}, rowsDownY)
	midBefore := worldPos(t, s, "mid")

	require.NoError(t, CopyOrient(s, "ref_root", "root", true))
	assert.True(t, worldRot(t, s, "root").ApproxEqual(worldRot(t, s, "ref_root"), 1e-9))
	assert.True(t, worldPos(t, s, "root").ApproxEqual(mathutil.Vec3{}, 1e-9))
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(midBefore, 1e-9))
}

func TestSwapsSigns(t *testing.T) {
	aim, pole := Swaps(mathutil.AxisNegX, mathutil.AxisY, Match{Source: mathutil.AxisNegZ, Target: mathutil.AxisX})
	assert.Equal(t, Swap{From: mathutil.AxisNegY, To: mathutil.AxisX}, aim)
	assert.Equal(t, Swap{From: mathutil.AxisNegX, To: mathutil.AxisZ}, pole)

	aim, _ = Swaps(mathutil.AxisNegX, mathutil.AxisNegY, Match{})
	assert.Equal(t, Swap{From: mathutil.AxisY, To: mathutil.AxisX}, aim)
}

func TestMatchPosition(t *testing.T) {
	s := skeleton.New()
	addChain(t, s, "ref_", mathutil.Vec3{0, 0, 5}, mathutil.Mat3Identity())
	addChain(t, s, "", mathutil.Vec3{}, rowsDownY)
	rot := worldRot(t, s, "mid")

	require.NoError(t, MatchPosition(s, "ref_mid", "mid", true))
	assert.True(t, worldPos(t, s, "mid").ApproxEqual(mathutil.Vec3{2, 0, 5}, 1e-9))
	assert.True(t, worldRot(t, s, "mid").ApproxEqual(rot, 1e-9))
	assert.True(t, worldPos(t, s, "tip").ApproxEqual(mathutil.Vec3{4, 0, 0}, 1e-9))
}
