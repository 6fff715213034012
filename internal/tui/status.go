// Package tui renders the availability indicator in a terminal.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aidetect/internal/availability"
)

var palette = map[string]lipgloss.Color{
	availability.ColorGray:   lipgloss.Color("245"),
	availability.ColorOrange: lipgloss.Color("214"),
	availability.ColorGreen:  lipgloss.Color("42"),
	availability.ColorRed:    lipgloss.Color("196"),
}

var icons = map[availability.State]string{
	availability.Online: "⚡",
	availability.Error:  "⚠",
}

type stateMsg availability.State

type closedMsg struct{}

// StatusModel follows a Monitor subscription and draws its indicator. It
// quits once the subscription closes, i.e. after Online or Error.
type StatusModel struct {
	spinner spinner.Model
	updates <-chan availability.State
	state   availability.State
	aborted bool
}

// NewStatusModel creates a model fed by updates.
func NewStatusModel(updates <-chan availability.State) StatusModel {
	return StatusModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		updates: updates,
		state:   availability.Loading,
	}
}

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForState(m.updates))
}

func waitForState(updates <-chan availability.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(s)
	}
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = availability.State(msg)
		return m, waitForState(m.updates)

	case closedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m StatusModel) View() string {
	ind := m.state.Indicator()
	if !ind.Visible {
		return ""
	}

	style := lipgloss.NewStyle().Bold(true).Foreground(palette[ind.Color])
	icon := icons[m.state]
	if ind.Spinning {
		icon = m.spinner.View()
	}
	if icon == "" {
		icon = "•"
	}
	return style.Render(icon+" "+ind.Text) + "\n"
}

// State returns the last state received.
func (m StatusModel) State() availability.State {
	return m.state
}

// Aborted reports whether the user quit before a terminal state.
func (m StatusModel) Aborted() bool {
	return m.aborted
}
