package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/janekbaraniewski/cursorusage/internal/config"
	"github.com/janekbaraniewski/cursorusage/internal/credentials"
	"github.com/janekbaraniewski/cursorusage/internal/cursorapi"
	"github.com/janekbaraniewski/cursorusage/internal/scheduler"
)

// app holds the global flags and the config they resolve to.
type app struct {
	configPath  string
	stateDBPath string
	token       string
	interval    int // seconds; only honoured when the flag was set

	intervalSet bool
	cfg         config.Config

	// interactive reports whether the resolver may prompt on the terminal.
	interactive func() bool
	// prompter defaults to the terminal prompter when nil.
	prompter credentials.Prompter
}

func newRootCommand() *cobra.Command {
	return newRootCommandFor(&app{interactive: stdinIsTerminal})
}

func newRootCommandFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cursorusage",
		Short: "cursorusage shows what your recent Cursor AI requests cost.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, a)
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	flags.StringVar(&a.token, "token", "", "session token to use instead of the stored one")
	flags.IntVar(&a.interval, "interval", 0, "refresh interval in seconds, 0 disables auto-refresh")
	flags.StringVar(&a.stateDBPath, "state-db", "", "path to Cursor's state.vscdb (default "+credentials.DefaultStateDBPath()+")")

	root.AddCommand(
		newWatchCommand(a),
		newStatusCommand(a),
		newTokenCommand(a),
		newIntervalCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if a.configPath == "" {
		a.configPath = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", a.configPath, err)
	}
	a.cfg = cfg
	a.intervalSet = cmd.Flags().Changed("interval")
	if a.intervalSet && a.interval < 0 {
		return fmt.Errorf("--interval must be >= 0, got %d", a.interval)
	}
	return nil
}

func (a *app) refreshInterval(cfg config.Config) time.Duration {
	if a.intervalSet {
		return time.Duration(a.interval) * time.Second
	}
	return cfg.RefreshInterval()
}

func (a *app) resolver(interactive bool) *credentials.Resolver {
	interactive = interactive && a.interactive != nil && a.interactive()
	r := &credentials.Resolver{
		StateDBPath: a.stateDBPath,
		Override:    a.token,
		Store:       config.NewFileStore(a.configPath),
	}
	if interactive {
		r.Prompt = a.prompter
		if r.Prompt == nil {
			r.Prompt = credentials.NewTerminalPrompter()
		}
	}
	return r
}

// resolveUpfront runs interactive resolution once, before any refresh cycle,
// so a slow prompt never eats into the request timeout. The returned
// resolver never prompts; a prompted token is already in the store.
func (a *app) resolveUpfront(ctx context.Context) (*credentials.Resolver, bool) {
	r := a.resolver(true)
	_, ok := r.Resolve(ctx)
	return r.WithoutPrompt(), ok
}

func (a *app) client() *cursorapi.Client {
	return cursorapi.New(cursorapi.WithBaseURL(a.cfg.APIBaseURL))
}

func (a *app) scheduler(source scheduler.CredentialSource) *scheduler.Scheduler {
	return scheduler.New(source, a.client(),
		scheduler.WithInterval(a.refreshInterval(a.cfg)),
		scheduler.WithLookback(a.cfg.Lookback()),
		scheduler.WithCycleTimeout(a.cfg.RequestTimeout()),
	)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
