package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/config"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

func newSQLiteRepository(t *testing.T) *SQLETLLogRepository {
	t.Helper()
	conn, err := config.ConnectWarehouse(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "runs.db"),
	}, utils.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { config.CloseWarehouse(conn) })

	repo := NewSQLETLLogRepository(conn.DB, conn.Driver)
	require.NoError(t, repo.CreateETLLogTable())
	require.NoError(t, repo.CreateETLLogTable())
	return repo
}

func TestRunLogLifecycle(t *testing.T) {
	repo := newSQLiteRepository(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	last, err := repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, repo.CreateLogEntry("first", start))
	require.NoError(t, repo.UpdateLogEntrySuccess("first", start.Add(90*time.Second), TableStats{Ingested: 10, Rejected: 2, Warned: 1}))

	require.NoError(t, repo.CreateLogEntry("second", start.Add(time.Hour)))
	require.NoError(t, repo.UpdateLogEntryFailure("second", start.Add(time.Hour+time.Second), TableStats{Ingested: 3}, "нарушена целостность"))

	require.NoError(t, repo.CreateLogEntry("third", start.Add(2*time.Hour)))

	runs, err := repo.GetRecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{runs[0].RunID, runs[1].RunID, runs[2].RunID})

	assert.Equal(t, RunStatusInProgress, runs[0].Status)
	assert.True(t, runs[0].EndTime.IsZero())

	assert.Equal(t, RunStatusFailed, runs[1].Status)
	assert.Equal(t, "нарушена целостность", runs[1].ErrorMessage)

	assert.Equal(t, RunStatusSuccess, runs[2].Status)
	assert.Equal(t, 10, runs[2].RowsIngested)
	assert.Equal(t, 2, runs[2].RowsRejected)
	assert.Equal(t, 1, runs[2].RowsWarned)
	assert.InDelta(t, 90.0, runs[2].ExecutionTimeSeconds, 0.001)

	last, err = repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "first", last.RunID)

	runs, err = repo.GetRecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestUpdateUnknownRun(t *testing.T) {
	repo := newSQLiteRepository(t)
	assert.Error(t, repo.UpdateLogEntrySuccess("missing", time.Now(), TableStats{}))
}
