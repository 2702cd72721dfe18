package tui

import (
	"github.com/charmbracelet/lipgloss"

	"remotecalc/internal/keypad"
	"remotecalc/internal/orchestrator"
)

const displayWidth = 24

var (
	frameStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	displayStyle = lipgloss.NewStyle().Bold(true).Width(displayWidth).Align(lipgloss.Right)
	errorStyle   = displayStyle.Foreground(lipgloss.Color("9"))
	statusStyle  = lipgloss.NewStyle().Faint(true).Width(displayWidth).Align(lipgloss.Right)
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// pendingDisplay replaces the display while a job is outstanding.
const pendingDisplay = "..."

const help = "0-9 . + - * / = | % percent | n sign | c clear | q quit"

func (m Model) View() string {
	var display string
	switch m.state.Phase {
	case keypad.PhaseEvaluating:
		display = displayStyle.Render(pendingDisplay)
	case keypad.PhaseError:
		display = errorStyle.Render(m.state.Display)
	default:
		display = displayStyle.Render(m.state.Display)
	}

	body := lipgloss.JoinVertical(lipgloss.Right, statusStyle.Render(m.status()), display)
	return frameStyle.Render(body) + "\n" + helpStyle.Render(help) + "\n"
}

func (m Model) status() string {
	s := m.state
	switch {
	case s.Phase == keypad.PhaseError && m.err != nil:
		return orchestrator.Kind(m.err) + " error"
	case s.Operator != "":
		return keypad.FormatNumber(s.Operand1) + " " + s.Operator.Symbol()
	}
	return ""
}
