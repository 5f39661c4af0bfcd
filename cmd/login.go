package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the Peloton API and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.resolveCredentials(username, password)

			session, err := app.service.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as user %s\n", session.UserID)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Peloton username or email (default: config file, then PELOTON_USER_NAME)")
	cmd.Flags().StringVar(&password, "password", "", "Peloton password (default: config file, then PELOTON_PASSWORD)")

	return cmd
}
