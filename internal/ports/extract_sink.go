package ports

import (
	"context"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

// ExtractSink writes the four overview extracts somewhere useful: CSV files,
// a SQLite database, anything downstream analysis wants.
type ExtractSink interface {
	WriteExtracts(ctx context.Context, extracts domain.Extracts) error
}
