package calculator

import (
	"errors"
	"fmt"
	"math"

	"remotecalc/internal/types"
)

var (
	ErrDivisionByZero  = errors.New("Division by zero")
	ErrInvalidOperator = errors.New("Invalid operator")
	ErrOutOfRange      = errors.New("Result out of range")
)

// Apply computes a op b. Results that do not fit a float64 are reported as
// ErrOutOfRange since JSON cannot carry infinities.
func Apply(op types.Operator, a, b float64) (float64, error) {
	var result float64
	switch op {
	case types.Add:
		result = a + b
	case types.Subtract:
		result = a - b
	case types.Multiply:
		result = a * b
	case types.Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		result = a / b
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, ErrOutOfRange
	}
	return result, nil
}

// Compute runs a task and returns either its result or the message to report back.
func Compute(task types.Task) types.TaskResult {
	result, err := Apply(task.Operator, task.Operand1, task.Operand2)
	if err != nil {
		if errors.Is(err, ErrInvalidOperator) {
			return types.TaskResult{ID: task.ID, Error: ErrInvalidOperator.Error()}
		}
		return types.TaskResult{ID: task.ID, Error: err.Error()}
	}
	return types.TaskResult{ID: task.ID, Result: result}
}
