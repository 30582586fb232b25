package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/cursorusage/internal/core"
	"github.com/janekbaraniewski/cursorusage/internal/usage"
)

const (
	defaultWidth = 80
	headerLines  = 4 // brand, status, blank, section title
	footerLines  = 2
)

func (m Model) View() string {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(w))
	b.WriteString("\n\n")
	b.WriteString(m.renderList(w))

	if m.showDetail {
		if detail := m.detailText(); detail != "" {
			b.WriteString("\n")
			b.WriteString(tooltipStyle.Render(detail))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(renderHelp(w))
	return b.String()
}

func (m Model) renderHeader(w int) string {
	left := headerBrandStyle.Render("⚡ cursorusage")
	if m.refreshing || m.state.Mode == core.ModeLoading {
		frame := SpinnerFrames[m.animFrame%len(SpinnerFrames)]
		left += " " + lipgloss.NewStyle().Foreground(colorAccent).Render(frame)
	}

	right := ""
	if !m.state.UpdatedAt.IsZero() {
		right = dimStyle.Render("updated " + m.state.UpdatedAt.Format("3:04:05 PM"))
	}

	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return ansi.Truncate(left+strings.Repeat(" ", gap)+right, w, "…")
}

func (m Model) renderStatus(w int) string {
	line := usage.Status(m.state)
	return ansi.Truncate(statusStyle(line.Severity).Render(line.Text), w, "…")
}

func (m Model) renderList(w int) string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("Recent sessions"))

	if m.state.Mode != core.ModeReady {
		lines = append(lines, dimStyle.Render("  nothing to show yet"))
		return strings.Join(lines, "\n")
	}
	if len(m.state.Recent) == 0 {
		lines = append(lines, dimStyle.Render("  no usage in the lookback window"))
		return strings.Join(lines, "\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.state.Recent[i], i == m.cursor, w))
	}
	if end < len(m.state.Recent) {
		lines = append(lines, dimStyle.Render("  … "+strconv.Itoa(len(m.state.Recent)-end)+" more"))
	}
	return strings.Join(lines, "\n")
}

// visibleRange keeps the cursor on screen when the list is taller than the
// terminal.
func (m Model) visibleRange() (int, int) {
	n := len(m.state.Recent)
	rows := n
	if m.height > 0 {
		rows = max(m.height-headerLines-footerLines-1, 1)
	}
	if n <= rows {
		return 0, n
	}
	start := max(m.cursor-rows+1, 0)
	return start, min(start+rows, n)
}

func (m Model) renderRow(ev core.UsageEvent, selected bool, w int) string {
	c := usage.Classify(ev)
	cost := tierStyle(c.Tier).Render(c.CostLine)
	desc := labelStyle.Render(usage.Describe(ev))

	style := rowNormalStyle
	if selected {
		style = rowSelectedStyle
	}
	inner := max(w-style.GetHorizontalFrameSize(), 1)
	return style.Render(ansi.Truncate(cost+"  "+desc, inner, "…"))
}

func (m Model) detailText() string {
	if ev, ok := m.selected(); ok && m.state.Mode == core.ModeReady {
		return usage.Classify(ev).Tooltip
	}
	return usage.Status(m.state).Tooltip
}

func renderHelp(w int) string {
	keys := []struct{ key, desc string }{
		{"r", "refresh"},
		{"↑/↓", "select"},
		{"enter", "details"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}
	return ansi.Truncate(strings.Join(parts, helpStyle.Render(" · ")), w, "…")
}
