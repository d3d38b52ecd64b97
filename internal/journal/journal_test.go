package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig-reorient/internal/reorient"
)

func sampleReport() *reorient.Report {
	return &reorient.Report{
		Outcomes: []reorient.Outcome{
			{Role: "spine", Source: "spine_SHJnt", State: reorient.Skipped},
			{Role: "hip", Source: "hip_SHJnt", Target: "LeftUpLeg", State: reorient.SmartOriented,
				Aim: "y→x", Pole: "x→y", Warnings: []string{"pole match is ambiguous"}},
			{Role: "knee", Source: "knee_SHJnt", Target: "LeftLeg", State: reorient.Failed, Error: "boom"},
			{Role: "toe", Source: "toe_SHJnt", Target: "LeftToeBase", State: reorient.DumbOriented},
		},
		Tally: reorient.Tally{Skipped: 1, Smart: 1, Dumb: 1, Failed: 1},
	}
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = j.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	meta := Meta{Datablock: "client.json", Mapping: "standard.yaml", Output: "out.json"}
	id1, err := j.Record(ctx, meta, sampleReport())
	require.NoError(t, err)
	id2, err := j.Record(ctx, meta, &reorient.Report{})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	last, err := j.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, id2, last.ID)

	run, err := j.GetRun(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, meta, run.Meta)
	assert.Equal(t, sampleReport().Tally, run.Tally)
	assert.False(t, run.RecordedAt.IsZero())

	_, err = j.GetRun(ctx, 999)
	assert.Error(t, err)

	outs, err := j.Outcomes(ctx, id1)
	require.NoError(t, err)
	require.Len(t, outs, 4)
	assert.Equal(t, "hip", outs[1].Role)
	assert.Equal(t, reorient.SmartOriented, outs[1].State)
	assert.Equal(t, []string{"pole match is ambiguous"}, outs[1].Warnings)
	assert.Equal(t, "boom", outs[2].Error)

	failed, err := j.FailedRoles(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, []string{"knee"}, failed)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(ctx, Meta{Datablock: "a.json"}, sampleReport())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM outcomes`).Scan(&n))
	assert.Equal(t, 4, n)

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	run, err := j.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.json", run.Datablock)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
