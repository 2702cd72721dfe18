// Package tui is the interactive calculator front end.
package tui

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"remotecalc/internal/keypad"
	"remotecalc/internal/orchestrator"
	"remotecalc/internal/types"
)

// Executor runs one remote operation to completion.
type Executor interface {
	Execute(ctx context.Context, op types.Operator, operand1, operand2 float64) (float64, error)
}

var _ Executor = (*orchestrator.Orchestrator)(nil)

// outcomeMsg carries the result of an evaluation started in epoch.
type outcomeMsg struct {
	epoch  int
	result float64
	err    error
}

// resetMsg ends the error display started in epoch.
type resetMsg struct {
	epoch int
}

var keyAliases = map[string]string{
	"enter":  "=",
	"x":      "*",
	"n":      "~",
	"esc":    "C",
	"delete": "C",
}

type Model struct {
	ctx          context.Context
	exec         Executor
	state        keypad.State
	errorDisplay time.Duration
	// epoch grows on every Clear; outcomes from older epochs are dropped.
	epoch int
	err   error
}

func New(ctx context.Context, exec Executor, errorDisplay time.Duration) Model {
	if errorDisplay <= 0 {
		errorDisplay = keypad.DefaultErrorDisplay
	}
	return Model{
		ctx:          ctx,
		exec:         exec,
		state:        keypad.Initial(),
		errorDisplay: errorDisplay,
	}
}

func (m Model) State() keypad.State {
	return m.state
}

// Err is the last evaluation failure, kept until the next key press.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		return m.press(key)

	case outcomeMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if errors.Is(msg.err, orchestrator.ErrBusy) {
			log.Printf("Операция отклонена: предыдущее задание еще выполняется")
			m.state = m.state.Abort()
			return m, nil
		}
		if msg.err != nil {
			log.Printf("Ошибка вычисления (%s): %v", orchestrator.Kind(msg.err), msg.err)
			m.err = msg.err
			m.state = m.state.Fail()
			epoch := m.epoch
			return m, tea.Tick(m.errorDisplay, func(time.Time) tea.Msg {
				return resetMsg{epoch: epoch}
			})
		}
		m.state = m.state.Succeed(msg.result)
		return m, nil

	case resetMsg:
		if msg.epoch == m.epoch {
			m.state = m.state.Reset()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) press(key string) (Model, tea.Cmd) {
	if key == "C" || key == "c" {
		m.epoch++
		m.err = nil
	}

	next, req := m.state.Press(key)
	m.state = next
	if req == nil {
		return m, nil
	}
	m.err = nil
	return m, m.evaluate(*req)
}

// evaluate runs the request off the update loop.
func (m Model) evaluate(req keypad.Request) tea.Cmd {
	ctx, exec, epoch := m.ctx, m.exec, m.epoch
	return func() tea.Msg {
		log.Printf("Отправка операции: %f %s %f", req.Operand1, req.Operator, req.Operand2)
		result, err := exec.Execute(ctx, req.Operator, req.Operand1, req.Operand2)
		return outcomeMsg{epoch: epoch, result: result, err: err}
	}
}

// KeyMsg builds the key event the terminal would send for key.
func KeyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// Drive feeds keys one at a time and runs every resulting command to completion
// before the next key, so evaluations resolve in order. observe, when set, sees
// the model after each processed message.
func Drive(m Model, keys []string, observe func(tea.Msg, Model)) Model {
	for _, key := range keys {
		queue := []tea.Msg{KeyMsg(key)}
		for len(queue) > 0 {
			msg := queue[0]
			queue = queue[1:]
			if _, ok := msg.(tea.QuitMsg); ok {
				return m
			}

			next, cmd := m.Update(msg)
			m = next.(Model)
			if observe != nil {
				observe(msg, m)
			}
			if cmd == nil {
				continue
			}
			if out := cmd(); out != nil {
				queue = append(queue, out)
			}
		}
	}
	return m
}
