package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	tablesadapter "github.com/seungjunone/peloton-data-explorer/internal/adapters/render/tables"
	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

func newOverviewCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Fetch the user overview and show the four tabular extracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				doc, err := app.service.Overview(cmd.Context())
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			extracts, err := cleanedOverviewOrEmpty(cmd, app)
			if err != nil {
				return err
			}
			reportCoercionIssues(cmd, extracts.Issues)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.renderer(extracts, tablesadapter.RenderOptions{}))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw overview document instead of tables")

	return cmd
}

// cleanedOverviewOrEmpty degrades a missing-key failure into four empty
// tables plus a warning; every other failure is returned as-is.
func cleanedOverviewOrEmpty(cmd *cobra.Command, app *app) (domain.Extracts, error) {
	extracts, err := app.service.CleanedOverview(cmd.Context())
	if err != nil {
		var missingKey *domain.MissingKeyError
		if !errors.As(err, &missingKey) {
			return domain.Extracts{}, err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; all extracts are empty\n", missingKey)
		return domain.Extracts{}, nil
	}

	return extracts, nil
}

func reportCoercionIssues(cmd *cobra.Command, issues []domain.CoercionIssue) {
	for _, issue := range issues {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
	}
}
