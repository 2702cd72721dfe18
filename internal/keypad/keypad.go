// Package keypad holds the calculator's input state machine.
//
// State is an immutable value: every operation returns the next state and never
// mutates the receiver. Operations that need the remote service return a Request;
// the caller runs it and feeds the outcome back through Succeed or Fail.
package keypad

import (
	"math"
	"strconv"
	"strings"
	"time"

	"remotecalc/internal/types"
)

// DefaultErrorDisplay is how long "Error" stays on screen before Reset.
const DefaultErrorDisplay = 1500 * time.Millisecond

const (
	initialDisplay = "0"
	errorDisplay   = "Error"
)

type Stage string

const (
	StageEntry          Stage = "entry"
	StageOperatorChosen Stage = "operator_chosen"
	StageResult         Stage = "result"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEvaluating
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseEvaluating:
		return "evaluating"
	case PhaseError:
		return "error"
	}
	return "idle"
}

// Request asks the orchestrator to compute Operand1 Operator Operand2.
type Request struct {
	Operator types.Operator
	Operand1 float64
	Operand2 float64
}

type State struct {
	Display     string
	Operand1    float64
	HasOperand1 bool
	// Operator is the pending operator, empty when none.
	Operator types.Operator
	// Chained is the operator that becomes pending once an implicit evaluation resolves.
	Chained types.Operator
	// Waiting is set right after an operator or a result: the next digit starts a new number.
	Waiting bool
	Phase   Phase
}

func Initial() State {
	return State{Display: initialDisplay}
}

func (s State) Stage() Stage {
	switch {
	case s.Operator != "":
		return StageOperatorChosen
	case s.HasOperand1 && s.Waiting:
		return StageResult
	}
	return StageEntry
}

func (s State) Busy() bool {
	return s.Phase != PhaseIdle
}

func (s State) EnterDigit(d int) State {
	if s.Busy() || d < 0 || d > 9 {
		return s
	}
	digit := strconv.Itoa(d)
	switch {
	case s.Waiting:
		s.Display = digit
		s.Waiting = false
	case s.Display == initialDisplay:
		s.Display = digit
	default:
		s.Display += digit
	}
	return s
}

func (s State) EnterDecimalPoint() State {
	if s.Busy() {
		return s
	}
	if s.Waiting {
		s.Display = initialDisplay + "."
		s.Waiting = false
		return s
	}
	if !strings.Contains(s.Display, ".") {
		s.Display += "."
	}
	return s
}

// ChooseOperator records op as pending. If an operator is already pending and a
// second operand has been entered, the pending operation is evaluated first and op
// becomes pending once it resolves.
func (s State) ChooseOperator(op types.Operator) (State, *Request) {
	if s.Busy() {
		return s, nil
	}
	if _, ok := types.ParseOperator(string(op)); !ok {
		return s, nil
	}

	if s.Operator != "" && !s.Waiting {
		next, req := s.Evaluate()
		if req != nil {
			next.Chained = op
			return next, req
		}
	}

	if s.Operator == "" {
		s.Operand1 = parseOperand(s.Display)
		s.HasOperand1 = true
	}
	s.Operator = op
	s.Waiting = true
	return s, nil
}

// Evaluate returns a request for the pending operation. It is a no-op while no
// operator is pending, while waiting for the second operand, or when an operand
// is not a number.
func (s State) Evaluate() (State, *Request) {
	if s.Busy() || s.Operator == "" || s.Waiting || !s.HasOperand1 {
		return s, nil
	}
	operand2 := parseOperand(s.Display)
	if math.IsNaN(s.Operand1) || math.IsNaN(operand2) {
		return s, nil
	}

	req := &Request{Operator: s.Operator, Operand1: s.Operand1, Operand2: operand2}
	s.Phase = PhaseEvaluating
	return s, req
}

// Succeed applies a resolved result.
func (s State) Succeed(result float64) State {
	if s.Phase != PhaseEvaluating {
		return s
	}
	s.Display = FormatNumber(result)
	s.Operand1 = result
	s.HasOperand1 = true
	s.Operator = s.Chained
	s.Chained = ""
	s.Waiting = true
	s.Phase = PhaseIdle
	return s
}

// Fail shows "Error" until Reset.
func (s State) Fail() State {
	if s.Phase != PhaseEvaluating {
		return s
	}
	s.Display = errorDisplay
	s.Phase = PhaseError
	return s
}

// Abort leaves PhaseEvaluating with every register kept, for a request that was
// never started. A chained operator waiting on that request is dropped.
func (s State) Abort() State {
	if s.Phase != PhaseEvaluating {
		return s
	}
	s.Chained = ""
	s.Phase = PhaseIdle
	return s
}

// Reset ends the error display. It does nothing outside PhaseError.
func (s State) Reset() State {
	if s.Phase != PhaseError {
		return s
	}
	return Initial()
}

func (s State) Clear() State {
	return Initial()
}

func (s State) ToggleSign() State {
	if s.Busy() {
		return s
	}
	v := parseOperand(s.Display)
	if math.IsNaN(v) {
		return s
	}
	s.Display = FormatNumber(-v)
	return s
}

func (s State) Percent() State {
	if s.Busy() {
		return s
	}
	v := parseOperand(s.Display)
	if math.IsNaN(v) {
		return s
	}
	s.Display = FormatNumber(v / 100)
	return s
}

// Press maps a single key to an operation:
// 0-9, ".", "+", "-", "*", "/", "=", "%", "~" (sign), "C" (clear).
// Unknown keys leave the state unchanged.
func (s State) Press(key string) (State, *Request) {
	switch key {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return s.EnterDigit(int(key[0] - '0')), nil
	case ".":
		return s.EnterDecimalPoint(), nil
	case "+", "-", "*", "/":
		return s.ChooseOperator(types.Operator(key))
	case "=":
		return s.Evaluate()
	case "%":
		return s.Percent(), nil
	case "~":
		return s.ToggleSign(), nil
	case "C", "c":
		return s.Clear(), nil
	}
	return s, nil
}

// FormatNumber renders v the way the display shows numbers: no trailing zeros,
// no exponent for ordinary magnitudes, and no negative zero.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseOperand(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
