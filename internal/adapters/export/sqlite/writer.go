package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

// Writer exports all four extracts into one SQLite database, one table per
// extract. Existing tables are dropped and recreated so repeated exports
// stay idempotent.
type Writer struct {
	path string
}

var _ ports.ExtractSink = (*Writer)(nil)

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) WriteExtracts(ctx context.Context, extracts domain.Extracts) error {
	db, err := sql.Open("sqlite", w.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables := []struct {
		name  string
		table domain.Table
	}{
		{"personal_records", extracts.PersonalRecords},
		{"streaks", extracts.Streaks},
		{"achievements", extracts.Achievements},
		{"workout_counts", extracts.WorkoutCounts},
	}

	for _, entry := range tables {
		if err := w.writeTable(ctx, db, entry.name, entry.table); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeTable(ctx context.Context, db *sql.DB, name string, table domain.Table) error {
	if len(table.Columns) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, createTableDDL(name, table)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertDML(name, table))
	if err != nil {
		return fmt.Errorf("prepare insert for %s: %w", name, err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(table.Columns))
	for _, row := range table.Rows {
		for i, cell := range row {
			args[i] = bindValue(cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}

	return nil
}

func createTableDDL(name string, table domain.Table) string {
	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = fmt.Sprintf("%s %s", quoteIdent(col), columnAffinity(table, i))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(columns, ", "))
}

func insertDML(name string, table domain.Table) string {
	columns := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// columnAffinity picks a SQLite type from the first non-nil cell.
func columnAffinity(table domain.Table, idx int) string {
	for _, row := range table.Rows {
		switch row[idx].(type) {
		case nil:
			continue
		case int64, bool:
			return "INTEGER"
		case float64:
			return "REAL"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func bindValue(v any) any {
	switch value := v.(type) {
	case nil, int64, float64, string, bool:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return domain.FormatCell(value)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
