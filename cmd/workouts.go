package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

func newWorkoutsCmd(app *app) *cobra.Command {
	var asJSON bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "Fetch the complete workout history, page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var workouts []domain.Document

			fetch := func(ctx context.Context) error {
				var err error
				workouts, err = app.service.Workouts(ctx)
				return err
			}

			if asJSON {
				if err := fetch(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching workouts...", fetch); err != nil {
					return err
				}
			}

			if outPath != "" {
				if err := writeWorkoutsFile(outPath, workouts); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d workouts to %s\n", len(workouts), outPath)
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(workouts)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d workouts\n", len(workouts))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw workout documents")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the raw workout documents to a JSON file")

	return cmd
}

func writeWorkoutsFile(path string, workouts []domain.Document) error {
	data, err := json.MarshalIndent(workouts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workouts: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write workouts file: %w", err)
	}

	return nil
}
