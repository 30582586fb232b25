package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorusage/internal/config"
	"github.com/janekbaraniewski/cursorusage/internal/core"
	"github.com/janekbaraniewski/cursorusage/internal/tui"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of the latest request cost and recent sessions (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, a)
		},
	}
}

func runWatch(cmd *cobra.Command, a *app) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The prompt cannot run once the alt screen is up, so ask before it.
	resolver, ok := a.resolveUpfront(ctx)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "No Cursor session token found; run `cursorusage token set` to add one.")
	}

	sched := a.scheduler(resolver)

	model := tui.NewModel(sched.State())
	model.SetOnRefresh(sched.TriggerRefresh)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := sched.Subscribe(func(st core.PresentationState) {
		program.Send(tui.StateMsg(st))
	})
	defer unsubscribe()

	sched.Start(ctx)
	defer sched.Stop()

	if err := config.Watch(ctx, a.configPath, func(cfg config.Config) {
		log.Printf("[config] reloaded %s", a.configPath)
		sched.SetInterval(a.refreshInterval(cfg))
		sched.TriggerRefresh()
	}); err != nil {
		log.Printf("[config] hot reload disabled: %v", err)
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
