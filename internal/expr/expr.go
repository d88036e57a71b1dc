// Package expr evaluates the small arithmetic language used in dynamic key
// templates such as Stage(0,Count-1).
//
// The language has decimal number literals, bare variable names resolved
// against a Scope, the binary operators + - * / with the usual precedence,
// and parentheses. A name may start with a digit; a token is a literal only
// when it parses as a finite number. There is no unary minus and no
// exponent operator.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMalformedExpression = errors.New("malformed expression")
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrNonNumericVariable  = errors.New("non-numeric variable")
	ErrDivisionByZero      = errors.New("division by zero")
)

// Error describes a failed evaluation. Err is one of the package sentinels.
type Error struct {
	Err    error
	Expr   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v in %q", e.Err, e.Expr)
	}
	return fmt.Sprintf("%v %q in %q", e.Err, e.Detail, e.Expr)
}

func (e *Error) Unwrap() error { return e.Err }

// Scope resolves variable names.
type Scope interface {
	Lookup(name string) (string, bool)
}

// MapScope is a Scope backed by a plain map.
type MapScope map[string]string

// Lookup implements Scope.
func (m MapScope) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	}
	return 0
}

func isTokenChar(c byte) bool {
	return c == '.' || c == '_' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

type evaluator struct {
	src    string
	scope  Scope
	values []float64
	ops    []byte
}

// Evaluate computes the value of src. A nil scope resolves no variables.
func Evaluate(src string, scope Scope) (float64, error) {
	e := &evaluator{src: src, scope: scope}
	return e.run()
}

func (e *evaluator) fail(err error, detail string) error {
	return &Error{Err: err, Expr: e.src, Detail: detail}
}

func (e *evaluator) run() (float64, error) {
	// expectOperand tracks whether the next token must be a value or "(".
	expectOperand := true
	for i := 0; i < len(e.src); {
		c := e.src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isTokenChar(c):
			if !expectOperand {
				return 0, e.fail(ErrMalformedExpression, "")
			}
			j := i
			for j < len(e.src) && isTokenChar(e.src[j]) {
				j++
			}
			v, err := e.operand(e.src[i:j])
			if err != nil {
				return 0, err
			}
			e.values = append(e.values, v)
			expectOperand = false
			i = j
		case c == '(':
			if !expectOperand {
				return 0, e.fail(ErrMalformedExpression, "")
			}
			e.ops = append(e.ops, c)
			i++
		case c == ')':
			if expectOperand {
				return 0, e.fail(ErrMalformedExpression, "")
			}
			for len(e.ops) > 0 && e.ops[len(e.ops)-1] != '(' {
				if err := e.apply(); err != nil {
					return 0, err
				}
			}
			if len(e.ops) == 0 {
				return 0, e.fail(ErrMalformedExpression, ")")
			}
			e.ops = e.ops[:len(e.ops)-1]
			i++
		case precedence(c) > 0:
			if expectOperand {
				return 0, e.fail(ErrMalformedExpression, string(c))
			}
			for len(e.ops) > 0 && precedence(e.ops[len(e.ops)-1]) >= precedence(c) {
				if err := e.apply(); err != nil {
					return 0, err
				}
			}
			e.ops = append(e.ops, c)
			expectOperand = true
			i++
		default:
			return 0, e.fail(ErrMalformedExpression, string(c))
		}
	}
	if expectOperand {
		return 0, e.fail(ErrMalformedExpression, "")
	}
	for len(e.ops) > 0 {
		if e.ops[len(e.ops)-1] == '(' {
			return 0, e.fail(ErrMalformedExpression, "(")
		}
		if err := e.apply(); err != nil {
			return 0, err
		}
	}
	if len(e.values) != 1 {
		return 0, e.fail(ErrMalformedExpression, "")
	}
	return e.values[0], nil
}

func (e *evaluator) operand(tok string) (float64, error) {
	if c := tok[0]; c == '.' || (c >= '0' && c <= '9') {
		if v, ok := parseFinite(tok); ok {
			return v, nil
		}
		// Keys may start with a digit, so a failed literal is looked up.
		if e.scope == nil {
			return 0, e.fail(ErrMalformedExpression, tok)
		}
		if _, ok := e.scope.Lookup(tok); !ok {
			return 0, e.fail(ErrMalformedExpression, tok)
		}
	}
	if e.scope == nil {
		return 0, e.fail(ErrUndefinedVariable, tok)
	}
	raw, ok := e.scope.Lookup(tok)
	if !ok {
		return 0, e.fail(ErrUndefinedVariable, tok)
	}
	v, ok := parseFinite(strings.TrimSpace(raw))
	if !ok {
		return 0, e.fail(ErrNonNumericVariable, tok)
	}
	return v, nil
}

func (e *evaluator) apply() error {
	if len(e.values) < 2 || len(e.ops) == 0 {
		return e.fail(ErrMalformedExpression, "")
	}
	op := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]
	b := e.values[len(e.values)-1]
	a := e.values[len(e.values)-2]
	e.values = e.values[:len(e.values)-2]

	var r float64
	switch op {
	case '+':
		r = a + b
	case '-':
		r = a - b
	case '*':
		r = a * b
	case '/':
		if b == 0 {
			return e.fail(ErrDivisionByZero, "")
		}
		r = a / b
	default:
		return e.fail(ErrMalformedExpression, string(op))
	}
	e.values = append(e.values, r)
	return nil
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
