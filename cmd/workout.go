package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newWorkoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "workout <workout-id>",
		Short: "Fetch one workout's detail document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.service.WorkoutDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
}
