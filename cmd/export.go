package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	csvexport "github.com/seungjunone/peloton-data-explorer/internal/adapters/export/csv"
	sqliteexport "github.com/seungjunone/peloton-data-explorer/internal/adapters/export/sqlite"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

func newExportCmd(app *app) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch the overview and export the four extracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, destination, err := buildSink(format, outPath)
			if err != nil {
				return err
			}

			extracts, err := cleanedOverviewOrEmpty(cmd, app)
			if err != nil {
				return err
			}
			reportCoercionIssues(cmd, extracts.Issues)

			if err := sink.WriteExtracts(cmd.Context(), extracts); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"Exported %d personal records, %d streaks, %d achievements, %d workout counts to %s\n",
				len(extracts.PersonalRecords.Rows),
				len(extracts.Streaks.Rows),
				len(extracts.Achievements.Rows),
				len(extracts.WorkoutCounts.Rows),
				destination,
			)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or sqlite")
	cmd.Flags().StringVar(&outPath, "out", "", "Destination directory (csv) or database file (sqlite)")

	return cmd
}

func buildSink(format, outPath string) (ports.ExtractSink, string, error) {
	switch format {
	case "csv":
		if outPath == "" {
			outPath = "pde-export"
		}
		return csvexport.NewWriter(outPath), outPath, nil
	case "sqlite":
		if outPath == "" {
			outPath = "pde-export.db"
		}
		return sqliteexport.NewWriter(outPath), outPath, nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q (want csv or sqlite)", format)
	}
}
