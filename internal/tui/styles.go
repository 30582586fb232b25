package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/cursorusage/internal/usage"
)

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorBase     = lipgloss.Color("#1E1E2E") // background
	colorSurface0 = lipgloss.Color("#313244") // selected row bg
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – brand
	colorSapphire = lipgloss.Color("#74C7EC") // key hints
	colorGreen    = lipgloss.Color("#A6E3A1")
	colorYellow   = lipgloss.Color("#F9E2AF")
	colorRed      = lipgloss.Color("#F38BA8")
	colorTeal     = lipgloss.Color("#94E2D5")
	colorLavender = lipgloss.Color("#B4BEFE")
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorLavender)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	rowNormalStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1)

	rowSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				PaddingRight(1).
				Background(colorSurface0)

	// Status pill, coloured by severity.
	statusNormalStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Padding(0, 1)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorYellow).
			Bold(true).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorRed).
				Bold(true).
				Padding(0, 1)

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Foreground(colorText).
			Padding(0, 1)
)

func statusStyle(sev usage.Severity) lipgloss.Style {
	switch sev {
	case usage.SeverityError:
		return statusErrorStyle
	case usage.SeverityWarning:
		return statusWarnStyle
	default:
		return statusNormalStyle
	}
}

// tierStyle colours the cost column of a list row.
func tierStyle(t usage.Tier) lipgloss.Style {
	switch t {
	case usage.TierHigh:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case usage.TierMedium:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case usage.TierLow:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case usage.TierIncluded, usage.TierFree:
		return lipgloss.NewStyle().Foreground(colorTeal)
	default:
		return dimStyle
	}
}
