package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorusage/internal/appupdate"
	"github.com/janekbaraniewski/cursorusage/internal/version"
)

func newVersionCommand() *cobra.Command {
	var check bool
	var releaseURL string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "cursorusage "+version.String())
			if !check {
				return nil
			}

			res, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion:   version.Version,
				LatestReleaseURL: releaseURL,
			})
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			switch {
			case res.CurrentVersion == "":
				fmt.Fprintln(out, "Development build; update check skipped")
			case res.UpdateAvailable:
				fmt.Fprintf(out, "Update available: %s -> %s\n  %s\n", res.CurrentVersion, res.LatestVersion, res.UpgradeHint)
			default:
				fmt.Fprintln(out, "Up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	cmd.Flags().StringVar(&releaseURL, "release-url", "", "latest-release API endpoint")
	_ = cmd.Flags().MarkHidden("release-url")
	return cmd
}
