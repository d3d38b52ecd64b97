package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/reorient"
	"rig-reorient/internal/skeleton"
)

func chain(t *testing.T, jo mathutil.Vec3) *skeleton.Skeleton {
	t.Helper()
	s := skeleton.New()
	require.NoError(t, s.AddJointAt("root", skeleton.KindJoint, "", mathutil.Vec3{}, skeleton.Channels{JointOrient: jo}))
	require.NoError(t, s.AddJointAt("mid", skeleton.KindJoint, "root", mathutil.Vec3{3, 0, 0}, skeleton.Channels{}))
	require.NoError(t, s.AddJointAt("tip", skeleton.KindJoint, "mid", mathutil.Vec3{6, 1, 0}, skeleton.Channels{}))
	return s
}

func TestRunAndManifest(t *testing.T) {
	out := t.TempDir()
	outcomes := []reorient.Outcome{
		{Role: "spine", Source: "spine_SHJnt", State: reorient.Skipped},
		{Role: "hip", Source: "ref_root", Target: "root", State: reorient.SmartOriented},
		{Role: "knee", Source: "ref_mid", Target: "mid", State: reorient.DumbOriented},
		{Role: "ghost", Source: "ref_x", Target: "nothere", State: reorient.SmartOriented},
		{Role: "arm", Source: "ref_arm", Target: "arm", State: reorient.Failed, Error: "boom"},
	}
	results := Run(Config{
		Before:      chain(t, mathutil.Vec3{}),
		After:       chain(t, mathutil.Vec3{0, 0, 90}),
		OutputDir:   out,
		View:        mathutil.Mat3Identity(),
		RenderSize:  48,
		Supersample: 2,
		Workers:     3,
	}, outcomes)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success, results[0].Error)
	assert.True(t, results[1].Success, results[1].Error)
	assert.False(t, results[2].Success)
	assert.FileExists(t, filepath.Join(out, "hip.webp"))
	assert.FileExists(t, filepath.Join(out, "knee_compare.webp"))

	path := filepath.Join(out, "manifest.json")
	require.NoError(t, WriteManifest(path, outcomes, results))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, "hip.webp", entries[1].Image)
	assert.Equal(t, reorient.SmartOriented, entries[1].State)
	assert.Empty(t, entries[0].Image)
	assert.Contains(t, entries[3].Error, "nothere")
	assert.Equal(t, "boom", entries[4].Error)
}

func TestFileStem(t *testing.T) {
	for role, want := range map[string]string{
		"hip":          "hip",
		"L_arm.01":     "L_arm.01",
		"../../etc/x":  "_.._etc_x",
		"arm/upper":    "arm_upper",
		"C:\\tmp\\x":   "C__tmp_x",
		"..":           "_",
		"":             "_",
	} {
		assert.Equal(t, want, fileStem(role), role)
	}
}

func TestRunKeepsPreviewsInsideOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "preview")
	results := Run(Config{
		Before:     chain(t, mathutil.Vec3{}),
		After:      chain(t, mathutil.Vec3{0, 0, 45}),
		OutputDir:  out,
		View:       mathutil.Mat3Identity(),
		RenderSize: 32,
	}, []reorient.Outcome{{Role: "../escape/hip", Source: "ref_root", Target: "root", State: reorient.SmartOriented}})

	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, out, filepath.Dir(results[0].Image))
	assert.FileExists(t, filepath.Join(out, "_escape_hip.webp"))
	assert.NoDirExists(t, filepath.Join(root, "escape"))
}
