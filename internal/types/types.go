package types

// Operator is the arithmetic function requested from the compute service.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "*"
	Divide   Operator = "/"
)

// Operators lists every supported operator in keypad order.
var Operators = []Operator{Add, Subtract, Multiply, Divide}

// ParseOperator accepts the wire form of an operator.
func ParseOperator(s string) (Operator, bool) {
	switch Operator(s) {
	case Add, Subtract, Multiply, Divide:
		return Operator(s), true
	}
	return "", false
}

// Symbol returns the glyph shown on the keypad.
func (o Operator) Symbol() string {
	switch o {
	case Multiply:
		return "×"
	case Divide:
		return "÷"
	}
	return string(o)
}

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

type OperationRequest struct {
	Operator Operator `json:"operator"`
	Operand1 float64  `json:"operand1"`
	Operand2 float64  `json:"operand2"`
}

// JobHandle is returned by POST /api/operation.
type JobHandle struct {
	ID      string    `json:"id"`
	Status  JobStatus `json:"status,omitempty"`
	Message string    `json:"message,omitempty"`
}

// ResultResponse is returned by GET /api/result/{id}.
type ResultResponse struct {
	ID     string    `json:"id,omitempty"`
	Status JobStatus `json:"status"`
	Result *float64  `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Task is the unit of work handed to an agent.
type Task struct {
	ID            string   `json:"id"`
	Operator      Operator `json:"operator"`
	Operand1      float64  `json:"operand1"`
	Operand2      float64  `json:"operand2"`
	OperationTime int      `json:"operation_time"`
}

// TaskResult carries either Result or a non-empty Error.
type TaskResult struct {
	ID     string  `json:"id"`
	Result float64 `json:"result"`
	Error  string  `json:"error,omitempty"`
}
