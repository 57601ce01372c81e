// Package calc evaluates arithmetic expressions for the on-screen
// calculator. A small recursive-descent parser, no dynamic evaluation.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidExpression wraps every parse or evaluation failure.
var ErrInvalidExpression = errors.New("invalid expression")

// functions are the named unary operations the calculator accepts.
var functions = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log10,
	"ln":   math.Log,
	"abs":  math.Abs,
}

// Evaluate parses and computes an expression. Supported grammar:
// numbers, + - * / ^, unary minus, parentheses, and the named
// functions sqrt, sin, cos, tan, log, ln, abs.
func Evaluate(input string) (float64, error) {
	p := &parser{input: input}
	p.skipSpaces()
	if p.eof() {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidExpression)
	}

	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if !p.eof() {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidExpression, p.input[p.pos], p.pos)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: result is not a finite number", ErrInvalidExpression)
	}
	return value, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseExpr handles + and -, left associative.
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// parseTerm handles * and /, left associative.
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrInvalidExpression)
			}
			left /= right
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.peek() == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePower()
}

// parsePower handles ^, right associative so 2^3^2 is 2^(3^2).
func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++

	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.eof() {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrInvalidExpression)
	}

	ch := p.peek()
	switch {
	case ch == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++
		return value, nil

	case ch >= '0' && ch <= '9' || ch == '.':
		return p.parseNumber()

	case unicode.IsLetter(rune(ch)):
		return p.parseFunction()
	}

	return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidExpression, ch, p.pos)
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for !p.eof() {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			p.pos++
			continue
		}
		break
	}

	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrInvalidExpression, p.input[start:p.pos])
	}
	return value, nil
}

func (p *parser) parseFunction() (float64, error) {
	start := p.pos
	for !p.eof() && unicode.IsLetter(rune(p.input[p.pos])) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	fn, ok := functions[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown function %q", ErrInvalidExpression, name)
	}

	p.skipSpaces()
	if p.peek() != '(' {
		return 0, fmt.Errorf("%w: %s requires parentheses", ErrInvalidExpression, name)
	}
	p.pos++

	arg, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.peek() != ')' {
		return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
	}
	p.pos++

	return fn(arg), nil
}
