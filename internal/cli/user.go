package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/database/users"
)

// passwordEnv lets scripts avoid passing the password on the command line.
const passwordEnv = "LIFTLOG_PASSWORD"

func newUserCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts (AUTH_MODE=local)",
	}

	var username, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a local account",
		Long: `Create a local account for AUTH_MODE=local.

The password is read from --password or the LIFTLOG_PASSWORD environment
variable and must be at least 12 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}

			db, cfg, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
			user, err := service.CreateUser(cmd.Context(), username, email, password)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "✓ Created user %s\n", user.Username)
			fmt.Fprintf(out, "  %s\n", color.New(color.Faint).Sprint(user.ID))
			return nil
		},
	}
	create.Flags().StringVarP(&username, "username", "u", "", "login name (required)")
	create.Flags().StringVarP(&email, "email", "e", "", "email address (required)")
	create.Flags().StringVarP(&password, "password", "p", "", "password (or set "+passwordEnv+")")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}
