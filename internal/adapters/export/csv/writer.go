package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

const (
	exportDirMode  = 0o755
	exportFileMode = 0o644
)

// Writer exports each extract to its own CSV file inside a directory.
type Writer struct {
	dir string
}

var _ ports.ExtractSink = (*Writer)(nil)

func NewWriter(dir string) *Writer {
	return &Writer{dir: filepath.Clean(dir)}
}

func (w *Writer) WriteExtracts(ctx context.Context, extracts domain.Extracts) error {
	if err := os.MkdirAll(w.dir, exportDirMode); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

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
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeTable(entry.name, entry.table); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeTable(name string, table domain.Table) error {
	path := filepath.Join(w.dir, name+".csv")

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, exportFileMode)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if len(table.Columns) > 0 {
		if err := writer.Write(table.Columns); err != nil {
			return fmt.Errorf("write %s header: %w", path, err)
		}
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, cell := range row {
			record[i] = domain.FormatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write %s row: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}
