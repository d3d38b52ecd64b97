package datablock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig-reorient/internal/mathutil"
)

const objectForm = `{
  "joints": [
    {"name": "match_import:hip", "nodeType": "joint", "parent": null,
     "children": ["match_import:knee"], "world_space_pos": [0, 10, 0],
     "jointOrient": [0, 0, -90], "rotate_order": 0},
    {"name": "match_import:knee", "nodeType": "joint", "parent": "match_import:hip",
     "children": null, "world_space_pos": [0, 5, 0],
     "jointOrient": [0, 0, 0], "rotate_order": "zxy"}
  ],
  "duplicates": ["knee"]
}`

const pairForm = `[
  [
    {"name": "root", "nodeType": "transform", "parent": null, "children": ["a"],
     "world_space_pos": [1, 2, 3]},
    {"name": "a", "nodeType": "joint", "parent": "root", "children": [],
     "world_space_pos": [1, 2, 4], "jointOrient": [10, 20, 30], "rotate_order": 5}
  ],
  [["a"], ["b", "c"]]
]`

func TestParseObjectForm(t *testing.T) {
	db, err := Parse([]byte(objectForm))
	require.NoError(t, err)
	require.Len(t, db.Joints, 2)

	hip := db.Joints[0]
	assert.Equal(t, "hip", hip.ShortName())
	assert.Equal(t, "", hip.ParentName())
	assert.Equal(t, []string{"knee"}, hip.ChildNames())
	assert.Equal(t, [3]float64{0, 0, -90}, hip.JointOrient)

	knee, ok := db.Find("other_ns:knee")
	require.True(t, ok)
	assert.Equal(t, "hip", knee.ParentName())
	assert.Equal(t, mathutil.RotateZXY, knee.RotateOrder.RotateOrder())
	assert.Empty(t, knee.ChildNames())

	assert.Equal(t, []string{"knee"}, db.Duplicates)
}

func TestParsePairForm(t *testing.T) {
	db, err := Parse([]byte(pairForm))
	require.NoError(t, err)
	require.Len(t, db.Joints, 2)
	assert.Equal(t, NodeTransform, db.Joints[0].NodeType)
	assert.Equal(t, mathutil.RotateZYX, db.Joints[1].RotateOrder.RotateOrder())
	assert.Equal(t, []string{"a", "b", "c"}, db.Duplicates)
}

func TestParseRejectsInvalid(t *testing.T) {
	bad := []string{
		`{"joints": [{"name": "a"}]}`,
		`{"joints": [{"name": "a", "world_space_pos": [0, 0]}]}`,
		`{"joints": [{"name": "a", "world_space_pos": [0, 0, 0], "rotate_order": 9}]}`,
		`{"joints": [{"name": "a", "world_space_pos": [0, 0, 0], "nodeType": "mesh"}]}`,
		`{"bones": []}`,
		`not json`,
	}
	for _, b := range bad {
		_, err := Parse([]byte(b))
		assert.Error(t, err, b)
	}
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, "hip", StripNamespace("hip"))
	assert.Equal(t, "hip", StripNamespace("a:hip"))
	assert.Equal(t, "hip", StripNamespace("a:b:hip"))
	assert.Equal(t, "", StripNamespace("a:"))
}

func TestSaveLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	db, err := Parse([]byte(objectForm))
	require.NoError(t, err)

	for _, name := range []string{"skel.json", "skel.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, db))

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, db, got, name)
	}

	plain, err := os.ReadFile(filepath.Join(dir, "skel.json"))
	require.NoError(t, err)
	packed, err := os.ReadFile(filepath.Join(dir, "skel.json.zst"))
	require.NoError(t, err)
	assert.NotEqual(t, plain, packed)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
