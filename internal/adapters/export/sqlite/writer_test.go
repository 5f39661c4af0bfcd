package sqlite

import (
	"context"
	"database/sql"
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
			Rows:    [][]any{{time.Unix(1700086400, 0).UTC(), time.Unix(1700000000, 0).UTC()}},
		},
		Achievements: domain.Table{
			Columns: []string{"count", "name"},
			Rows:    [][]any{{float64(3), "First Ride"}},
		},
		WorkoutCounts: domain.Table{
			Columns: []string{"count", "name"},
			Rows:    [][]any{{float64(120), "Cycling"}},
		},
	}
}

func TestWriteExtractsCreatesOneTablePerExtract(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.db")
	writer := NewWriter(path)

	require.NoError(t, writer.WriteExtracts(context.Background(), testExtracts()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, name := range []string{"personal_records", "streaks", "achievements", "workout_counts"} {
		var count int
		require.NoError(t, db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count))
		assert.Equal(t, 1, count, name)
	}

	rows, err := db.Query(`SELECT slug, value, raw_value, workout_date FROM personal_records ORDER BY slug`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rows.Close() })

	type record struct {
		slug     int64
		value    int64
		rawValue float64
		date     string
	}

	var records []record
	for rows.Next() {
		var r record
		require.NoError(t, rows.Scan(&r.slug, &r.value, &r.rawValue, &r.date))
		records = append(records, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, records, 2)
	assert.Equal(t, record{slug: 5, value: 80, rawValue: 80.0, date: "2023-03-12T00:00:00Z"}, records[0])
	assert.Equal(t, record{slug: 20, value: 240, rawValue: 240.5, date: "2023-04-01T10:30:00Z"}, records[1])
}

func TestWriteExtractsIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.db")
	writer := NewWriter(path)

	require.NoError(t, writer.WriteExtracts(context.Background(), testExtracts()))
	require.NoError(t, writer.WriteExtracts(context.Background(), testExtracts()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM achievements`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWriteExtractsSkipsEmptyTables(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.db")
	writer := NewWriter(path)

	extracts := testExtracts()
	extracts.Streaks = domain.Table{}
	require.NoError(t, writer.WriteExtracts(context.Background(), extracts))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'streaks'`).Scan(&count))
	assert.Zero(t, count)
}
