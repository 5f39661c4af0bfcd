package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

func testExtracts() domain.Extracts {
	return domain.Extracts{
		PersonalRecords: domain.Table{
			Columns: []string{"raw_value", "slug", "value", "workout_date"},
			Rows: [][]any{
				{80.0, int64(5), int64(80), time.Date(2023, 3, 12, 0, 0, 0, 0, time.UTC)},
				{240.5, int64(20), int64(240), time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC)},
			},
		},
		Streaks: domain.Table{
			Columns: []string{"start_date_of_current_daily", "start_date_of_current_weekly"},
			Rows: [][]any{
				{time.Unix(1700086400, 0).UTC(), time.Unix(1700000000, 0).UTC()},
			},
		},
		Achievements: domain.Table{
			Columns: []string{"count", "name"},
			Rows:    [][]any{{float64(3), "First Ride"}},
		},
		WorkoutCounts: domain.Table{
			Columns: []string{"count", "name"},
			Rows:    [][]any{{float64(120), "Cycling"}, {float64(45), "Strength"}},
		},
	}
}

func TestWriteExtractsProducesOneFilePerExtract(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir)

	require.NoError(t, writer.WriteExtracts(context.Background(), testExtracts()))

	for _, name := range []string{"personal_records", "streaks", "achievements", "workout_counts"} {
		_, err := os.Stat(filepath.Join(dir, name+".csv"))
		require.NoError(t, err, name)
	}

	records, err := os.ReadFile(filepath.Join(dir, "personal_records.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"raw_value,slug,value,workout_date\n"+
			"80,5,80,2023-03-12T00:00:00Z\n"+
			"240.5,20,240,2023-04-01T10:30:00Z\n",
		string(records))

	counts, err := os.ReadFile(filepath.Join(dir, "workout_counts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "count,name\n120,Cycling\n45,Strength\n", string(counts))
}

func TestWriteExtractsWithEmptyTablesWritesEmptyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir)

	require.NoError(t, writer.WriteExtracts(context.Background(), domain.Extracts{}))

	data, err := os.ReadFile(filepath.Join(dir, "streaks.csv"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteExtractsOverwritesPreviousExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir)

	require.NoError(t, writer.WriteExtracts(context.Background(), testExtracts()))

	smaller := testExtracts()
	smaller.WorkoutCounts.Rows = smaller.WorkoutCounts.Rows[:1]
	require.NoError(t, writer.WriteExtracts(context.Background(), smaller))

	data, err := os.ReadFile(filepath.Join(dir, "workout_counts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "count,name\n120,Cycling\n", string(data))
}
