package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/cursorusage/internal/core"
	"github.com/janekbaraniewski/cursorusage/internal/usage"
)

type statusOptions struct {
	json bool
	list bool
}

func newStatusCommand(a *app) *cobra.Command {
	var opts statusOptions
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run one refresh and print the status line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver, _ := a.resolveUpfront(cmd.Context())
			sched := a.scheduler(resolver)
			sched.Refresh(cmd.Context())
			return printStatus(cmd.OutOrStdout(), sched.State(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full state as JSON")
	cmd.Flags().BoolVar(&opts.list, "list", false, "also list recent sessions")
	return cmd
}

type statusEvent struct {
	core.UsageEvent
	Tier     usage.Tier `json:"tier"`
	CostLine string     `json:"cost_line"`
}

type statusJSON struct {
	Mode      core.Mode     `json:"mode"`
	Status    string        `json:"status"`
	UpdatedAt string        `json:"updated_at,omitempty"`
	Latest    *statusEvent  `json:"latest,omitempty"`
	Recent    []statusEvent `json:"recent,omitempty"`
}

func printStatus(w io.Writer, st core.PresentationState, opts statusOptions) error {
	line := usage.Status(st)

	if opts.json {
		out := statusJSON{Mode: st.Mode, Status: line.Text}
		if !st.UpdatedAt.IsZero() {
			out.UpdatedAt = st.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		if st.Latest != nil {
			ev := toStatusEvent(*st.Latest)
			out.Latest = &ev
		}
		if opts.list {
			for _, ev := range st.Recent {
				out.Recent = append(out.Recent, toStatusEvent(ev))
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, line.Text)
	if !opts.list || st.Mode != core.ModeReady {
		return nil
	}
	for _, ev := range st.Recent {
		c := usage.Classify(ev)
		fmt.Fprintf(w, "  %s  %s\n", c.CostLine, usage.Describe(ev))
	}
	return nil
}

func toStatusEvent(ev core.UsageEvent) statusEvent {
	c := usage.Classify(ev)
	return statusEvent{UsageEvent: ev, Tier: c.Tier, CostLine: c.CostLine}
}
