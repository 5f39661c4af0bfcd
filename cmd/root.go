package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pde",
		Short:         "Peloton Data Explorer (pde): export and reshape your workout data",
		Long:          "pde logs into the Peloton API, fetches your profile overview and workout history, and reshapes the overview into tabular extracts (personal records, streaks, achievements, workout counts) for further analysis.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newOverviewCmd(app),
		newWorkoutsCmd(app),
		newWorkoutCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
