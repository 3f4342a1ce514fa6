package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordRun_AssignsID(t *testing.T) {
	j := openTestJournal(t)

	run := &Run{
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Candidates: 10,
		Extracted:  8,
		NotFound:   2,
		Status:     "ok",
	}
	require.NoError(t, j.RecordRun(run))
	assert.NotZero(t, run.ID)

	runs, err := j.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 10, runs[0].Candidates)
	assert.Equal(t, 8, runs[0].Extracted)
	assert.Equal(t, 2, runs[0].NotFound)
	assert.Equal(t, "ok", runs[0].Status)
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	j := openTestJournal(t)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, status := range []string{"ok", "restore-failed", "ok"} {
		started := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, j.RecordRun(&Run{
			StartedAt:  started,
			FinishedAt: started.Add(time.Minute),
			Status:     status,
		}))
	}

	runs, err := j.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "ok", runs[0].Status)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.Equal(t, "restore-failed", runs[1].Status)
}

func TestRecentRuns_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	runs, err := j.RecentRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordRun(&Run{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Status:     "ok",
	}))
}
