package calc

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2+3", 5},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10-4-3", 3}, // left associative
		{"10/4", 2.5},
		{"2^10", 1024},
		{"2^3^2", 512}, // right associative
		{"-3+5", 2},
		{"--4", 4},
		{"-(2+3)", -5},
		{"-2^2", -4}, // unary minus binds looser than power
		{"3.5*2", 7},
		{".5+.5", 1},
		{"sqrt(16)", 4},
		{"sqrt(2+2)", 2},
		{"log(100)", 2},
		{"ln(1)", 0},
		{"abs(-5)", 5},
		{"ABS(-5)", 5}, // function names are case-insensitive
		{"sin(0)", 0},
		{"cos(0)", 1},
		{"tan(0)", 0},
		{"2 * ( 3 + 4 )", 14},
		{"sqrt(16)+2^2", 8},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Evaluate(tt.in)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Evaluate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"2/0",
		"1/(3-3)",
		"2++",
		"*3",
		"(2+3",
		"2+3)",
		"2..3",
		"foo(2)",
		"sqrt 16",
		"sqrt(16",
		"2 3",
		"sqrt(-1)", // NaN result
		"ln(0)",    // -Inf result
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := Evaluate(in); !errors.Is(err, ErrInvalidExpression) {
				t.Fatalf("Evaluate(%q) err = %v, want ErrInvalidExpression", in, err)
			}
		})
	}
}
