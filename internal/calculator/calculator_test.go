package calculator

import (
	"errors"
	"testing"

	"remotecalc/internal/types"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		op      types.Operator
		a, b    float64
		want    float64
		wantErr error
	}{
		{name: "Сложение", op: types.Add, a: 2, b: 3, want: 5},
		{name: "Вычитание", op: types.Subtract, a: 5, b: 3, want: 2},
		{name: "Умножение", op: types.Multiply, a: 2, b: 3, want: 6},
		{name: "Деление", op: types.Divide, a: 6, b: 4, want: 1.5},
		{name: "Деление на ноль", op: types.Divide, a: 6, b: 0, wantErr: ErrDivisionByZero},
		{name: "Неизвестная операция", op: "?", a: 6, b: 3, wantErr: ErrInvalidOperator},
		{name: "Переполнение", op: types.Multiply, a: 1e308, b: 10, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.op, tt.a, tt.b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	res := Compute(types.Task{ID: "t1", Operator: types.Divide, Operand1: 1, Operand2: 0})
	if res.Error != "Division by zero" {
		t.Errorf("Compute() error = %q, want %q", res.Error, "Division by zero")
	}

	res = Compute(types.Task{ID: "t2", Operator: "%", Operand1: 1, Operand2: 2})
	if res.Error != "Invalid operator" {
		t.Errorf("Compute() error = %q, want %q", res.Error, "Invalid operator")
	}

	res = Compute(types.Task{ID: "t3", Operator: types.Multiply, Operand1: 4, Operand2: 2.5})
	if res.Error != "" || res.Result != 10 || res.ID != "t3" {
		t.Errorf("Compute() = %+v, want result 10", res)
	}
}
