package usage

import (
	"fmt"

	"github.com/janekbaraniewski/cursorusage/internal/core"
)

// Severity picks the status-line colouring.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityError
)

// StatusLine is the one-line summary of a presentation state.
type StatusLine struct {
	Text     string
	Severity Severity
	Tooltip  string
}

// Status renders the one-line summary. Error and missing-credential states
// carry their own severity; otherwise it follows the latest event's tier.
func Status(state core.PresentationState) StatusLine {
	switch state.Mode {
	case core.ModeLoading:
		return StatusLine{Text: "Cursor: Loading..."}
	case core.ModeNoToken:
		return StatusLine{
			Text:     "Cursor: No Token",
			Severity: SeverityWarning,
			Tooltip:  "No Cursor session token found. Sign in to Cursor or run `cursorusage token set`.",
		}
	case core.ModeError:
		return StatusLine{
			Text:     "Cursor: Error",
			Severity: SeverityError,
			Tooltip:  "Failed to fetch usage data. Press r to retry.",
		}
	}

	if state.Latest == nil {
		return StatusLine{Text: "Usage: No activity"}
	}

	ev := *state.Latest
	c := Classify(ev)
	line := StatusLine{
		Text:    fmt.Sprintf("%s Usage: %s | %s", c.Icon, c.StatusLabel, FormatTokenCount(ev.Tokens)),
		Tooltip: c.Tooltip,
	}
	switch c.Tier {
	case TierHigh:
		line.Severity = SeverityError
	case TierMedium:
		line.Severity = SeverityWarning
	}
	return line
}
