package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorusage/internal/config"
)

func newIntervalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [seconds]",
		Short: "Show or persist the refresh interval (0 disables auto-refresh)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintf(out, "%d\n", a.cfg.RefreshIntervalSeconds)
				return nil
			}
			seconds, err := strconv.Atoi(args[0])
			if err != nil || seconds < 0 {
				return fmt.Errorf("invalid interval %q: want a whole number of seconds >= 0", args[0])
			}
			if err := config.SaveRefreshIntervalTo(a.configPath, seconds); err != nil {
				return err
			}
			if seconds == 0 {
				fmt.Fprintln(out, "Auto-refresh disabled")
			} else {
				fmt.Fprintf(out, "Refreshing every %ds\n", seconds)
			}
			return nil
		},
	}
}
