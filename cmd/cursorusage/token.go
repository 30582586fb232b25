package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorusage/internal/config"
	"github.com/janekbaraniewski/cursorusage/internal/credentials"
)

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Cursor session token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [value]",
			Short: "Store a session token (prompts when no value is given)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var token string
				if len(args) == 1 {
					token = args[0]
				} else {
					var err error
					token, err = credentials.NewTerminalPrompter().PromptToken(cmd.Context())
					if err != nil {
						return err
					}
				}
				token = strings.TrimSpace(token)
				if token == "" {
					return errors.New("empty token")
				}
				if err := config.SaveSessionTokenTo(a.configPath, token); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", credentials.Redact(credentials.NormalizeCredential(token)), a.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored session token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.SaveSessionTokenTo(a.configPath, ""); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session token cleared")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show which credential would be used, redacted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showToken(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "import",
			Short: "Import the session cookie from a local browser",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cred, err := credentials.ImportBrowserCookie(cmd.Context())
				if err != nil {
					return err
				}
				if err := config.SaveSessionTokenTo(a.configPath, cred); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", credentials.Redact(cred))
				return nil
			},
		},
	)
	return cmd
}

func showToken(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	cred, ok := a.resolver(false).Resolve(cmd.Context())
	if !ok {
		fmt.Fprintln(out, "No session token available")
		return nil
	}
	fmt.Fprintln(out, credentials.Redact(cred))

	info, err := credentials.ReadAccountInfo(cmd.Context(), a.stateDBPath)
	if err == nil && info.Email != "" {
		fmt.Fprintf(out, "Account: %s", info.Email)
		if info.Membership != "" {
			fmt.Fprintf(out, " (%s)", info.Membership)
		}
		fmt.Fprintln(out)
	}
	return nil
}
