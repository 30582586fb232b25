// Package tui is the interactive watch view: a status line over the recent
// sessions list, refreshed by scheduler publications.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/cursorusage/internal/core"
)

var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// StateMsg carries a freshly published presentation state.
type StateMsg core.PresentationState

type Model struct {
	state      core.PresentationState
	cursor     int
	width      int
	height     int
	animFrame  int
	refreshing bool // manual refresh requested, waiting for the next StateMsg
	showDetail bool // tooltip of the selected row

	onRefresh func()
}

func NewModel(initial core.PresentationState) Model {
	return Model{state: initial}
}

// SetOnRefresh wires the r key to the scheduler.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.animFrame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StateMsg:
		m.state = core.PresentationState(msg)
		m.refreshing = false
		m.cursor = min(m.cursor, max(len(m.state.Recent)-1, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.state.Recent)
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(n-1, 0)
	case "enter", " ":
		m.showDetail = !m.showDetail
	case "esc":
		m.showDetail = false
	case "r":
		m = m.requestRefresh()
	}
	return m, nil
}

func (m Model) requestRefresh() Model {
	if m.refreshing {
		return m
	}
	m.refreshing = true
	if m.onRefresh != nil {
		m.onRefresh()
	}
	return m
}

func (m Model) selected() (core.UsageEvent, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Recent) {
		return core.UsageEvent{}, false
	}
	return m.state.Recent[m.cursor], true
}
