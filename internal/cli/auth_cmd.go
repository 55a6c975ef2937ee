package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/studylog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSignInCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with an email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if strings.TrimSpace(email) == "" {
				if !app.interactive() {
					return fmt.Errorf("--email is required")
				}
				if err := wizardInputText("Email", "you@example.com", true, &email).Run(); err != nil {
					return err
				}
			}

			id, err := app.signInUseCase().SignIn(ctx, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Signed in as "+formatter.Bold(id.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to sign in with")

	return cmd
}

func newSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.SignOut(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Signed out"))
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Auth.Current(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if id == nil {
				fmt.Fprintln(out, formatter.Dim("Not signed in."))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", formatter.Bold(id.Email), formatter.Dim("("+id.ID+")"))
			return nil
		},
	}
}
