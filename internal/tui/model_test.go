package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"remotecalc/internal/calculator"
	"remotecalc/internal/keypad"
	"remotecalc/internal/orchestrator"
	"remotecalc/internal/types"
)

type call struct {
	op   types.Operator
	a, b float64
}

// localExecutor computes in process and records every call.
type localExecutor struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (e *localExecutor) Execute(ctx context.Context, op types.Operator, a, b float64) (float64, error) {
	e.mu.Lock()
	e.calls = append(e.calls, call{op, a, b})
	e.mu.Unlock()
	if e.err != nil {
		return 0, e.err
	}
	v, err := calculator.Apply(op, a, b)
	if err != nil {
		return 0, &orchestrator.ComputeError{JobID: "local", Message: err.Error()}
	}
	return v, nil
}

func keys(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func TestDriveOperators(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"сложение", "5+3=", "8"},
		{"вычитание", "5-3=", "2"},
		{"умножение", "5*3=", "15"},
		{"деление", "6/4=", "1.5"},
		{"цепочка", "5+3+2=", "10"},
		{"смена знака", "8~", "-8"},
		{"процент", "50%", "0.5"},
		{"десятичная точка", "1..2", "1.2"},
		{"сброс", "5+3=C", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Drive(New(context.Background(), &localExecutor{}, time.Millisecond), keys(tt.keys), nil)
			if got := m.State().Display; got != tt.want {
				t.Errorf("Display = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriveChainedSubmits(t *testing.T) {
	exec := &localExecutor{}
	Drive(New(context.Background(), exec, time.Millisecond), keys("5+3+2="), nil)

	want := []call{{types.Add, 5, 3}, {types.Add, 8, 2}}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, exec.calls[i], want[i])
		}
	}
}

func TestDriveErrorThenReset(t *testing.T) {
	exec := &localExecutor{}
	var displays []string
	m := Drive(New(context.Background(), exec, time.Millisecond), keys("1/0="), func(msg tea.Msg, m Model) {
		displays = append(displays, m.State().Display)
	})

	if !contains(displays, "Error") {
		t.Errorf("Error не показан: %v", displays)
	}
	if m.State() != keypad.Initial() {
		t.Errorf("после задержки состояние = %+v", m.State())
	}
}

func TestErrorBlocksInputUntilReset(t *testing.T) {
	exec := &localExecutor{err: &orchestrator.TimeoutError{JobID: "j", Attempts: 20}}
	m := New(context.Background(), exec, time.Hour)

	m = Drive(m, keys("2+2"), nil)
	next, cmd := m.Update(KeyMsg("="))
	m = next.(Model)
	next, tick := m.Update(cmd())
	m = next.(Model)

	if m.State().Display != "Error" || tick == nil {
		t.Fatalf("Display = %q, tick = %v", m.State().Display, tick)
	}
	if !strings.Contains(m.View(), "timeout error") {
		t.Errorf("View() не показывает причину:\n%s", m.View())
	}

	next, _ = m.Update(KeyMsg("7"))
	m = next.(Model)
	if m.State().Display != "Error" {
		t.Errorf("ввод во время ошибки изменил экран: %q", m.State().Display)
	}

	next, _ = m.Update(resetMsg{epoch: m.epoch})
	m = next.(Model)
	if m.State().Display != "0" {
		t.Errorf("после сброса Display = %q", m.State().Display)
	}
}

func TestClearDiscardsLateOutcome(t *testing.T) {
	m := New(context.Background(), &localExecutor{}, time.Millisecond)
	m = Drive(m, keys("5+3"), nil)

	next, cmd := m.Update(KeyMsg("="))
	m = next.(Model)
	if cmd == nil || !m.State().Busy() {
		t.Fatal("вычисление не началось")
	}

	m = Drive(m, []string{"c"}, nil)
	next, _ = m.Update(cmd())
	m = next.(Model)

	if m.State() != keypad.Initial() {
		t.Errorf("запоздавший результат применен: %+v", m.State())
	}
}

// slowService holds the first job pending until release is closed.
type slowService struct {
	mu      sync.Mutex
	release chan struct{}
	reqs    map[string]types.OperationRequest
}

func (s *slowService) Submit(ctx context.Context, req types.OperationRequest) (types.JobHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("job-%d", len(s.reqs)+1)
	s.reqs[id] = req
	return types.JobHandle{ID: id, Status: types.StatusPending}, nil
}

func (s *slowService) Result(ctx context.Context, id string) (types.ResultResponse, error) {
	if id == "job-1" {
		select {
		case <-s.release:
		case <-ctx.Done():
			return types.ResultResponse{}, ctx.Err()
		}
	}
	s.mu.Lock()
	req := s.reqs[id]
	s.mu.Unlock()
	v, err := calculator.Apply(req.Operator, req.Operand1, req.Operand2)
	if err != nil {
		return types.ResultResponse{ID: id, Status: types.StatusFailed, Error: err.Error()}, nil
	}
	return types.ResultResponse{ID: id, Status: types.StatusCompleted, Result: &v}, nil
}

func TestEvaluateWhileSlotTakenIsNoOp(t *testing.T) {
	svc := &slowService{release: make(chan struct{}), reqs: map[string]types.OperationRequest{}}
	orch := orchestrator.New(svc, orchestrator.Config{PollInterval: time.Millisecond, MaxAttempts: 20})
	m := New(context.Background(), orch, time.Hour)

	m = Drive(m, keys("5+3"), nil)
	next, cmd := m.Update(KeyMsg("="))
	m = next.(Model)
	first := make(chan tea.Msg, 1)
	go func() { first <- cmd() }()

	deadline := time.Now().Add(time.Second)
	for !orch.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("первое задание не заняло слот")
		}
		time.Sleep(time.Millisecond)
	}

	m = Drive(m, keys("c2+2="), nil)
	want := keypad.State{Display: "2", Operand1: 2, HasOperand1: true, Operator: types.Add}
	if m.State() != want {
		t.Fatalf("после отклонения состояние = %+v, want %+v", m.State(), want)
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v, want nil", m.Err())
	}

	close(svc.release)
	next, _ = m.Update(<-first)
	m = next.(Model)
	if m.State() != want {
		t.Errorf("запоздавший результат изменил состояние: %+v", m.State())
	}

	m = Drive(m, keys("="), nil)
	if m.State().Display != "4" {
		t.Errorf("Display = %q, want 4", m.State().Display)
	}
}

func TestNewDefaultErrorDisplay(t *testing.T) {
	if m := New(context.Background(), &localExecutor{}, 0); m.errorDisplay != keypad.DefaultErrorDisplay {
		t.Errorf("errorDisplay = %v, want %v", m.errorDisplay, keypad.DefaultErrorDisplay)
	}
}

func TestViewShowsPendingDisplay(t *testing.T) {
	m := Drive(New(context.Background(), &localExecutor{}, time.Millisecond), keys("5+37"), nil)
	next, _ := m.Update(KeyMsg("="))
	view := next.(Model).View()

	if !strings.Contains(view, "...") || strings.Contains(view, "37") {
		t.Errorf("View() во время вычисления:\n%s", view)
	}
	if !strings.Contains(view, "5 +") {
		t.Errorf("View() без ожидающей операции:\n%s", view)
	}
}

func TestQuitKeys(t *testing.T) {
	m := New(context.Background(), &localExecutor{}, 0)
	for _, key := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(KeyMsg(key))
		if cmd == nil {
			t.Fatalf("%s: нет команды", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: ожидается tea.QuitMsg", key)
		}
	}
}

func TestKeyAliases(t *testing.T) {
	m := Drive(New(context.Background(), &localExecutor{}, time.Millisecond), []string{"6", "x", "7", "enter"}, nil)
	if m.State().Display != "42" {
		t.Errorf("Display = %q, want 42", m.State().Display)
	}

	m = Drive(m, []string{"esc"}, nil)
	if m.State() != keypad.Initial() {
		t.Errorf("esc не сбросил состояние: %+v", m.State())
	}
}

func TestViewShowsPendingOperator(t *testing.T) {
	m := Drive(New(context.Background(), &localExecutor{}, time.Millisecond), keys("12/"), nil)
	view := m.View()
	if !strings.Contains(view, "12 ÷") {
		t.Errorf("View() без оператора:\n%s", view)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
