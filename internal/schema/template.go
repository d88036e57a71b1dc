package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/expr"
	"github.com/Super-StarX/INIValidator/internal/ini"
)

// MaxExpansion bounds the number of keys one template may generate.
const MaxExpansion = 1 << 16

var (
	ErrTemplateFormat = errors.New("template must look like Prefix(low,high)Suffix")
	ErrRangeTooLarge  = errors.New("template range is too large")
	ErrInvalidBound   = errors.New("template bound is not a finite integer")
)

// Template is a dynamic key family such as Stage(0,Count-1). Each integer
// in the inclusive range replaces the parenthesised slot.
type Template struct {
	Key  string
	Data DictData
}

// Parts splits the template into the text before the slot, the two bound
// expressions and the text after the slot.
func (t Template) Parts() (prefix, low, high, suffix string, err error) {
	open := strings.IndexByte(t.Key, '(')
	if open < 0 {
		return "", "", "", "", ErrTemplateFormat
	}
	depth, end, comma := 0, -1, -1
	for i := open; i < len(t.Key) && end < 0; i++ {
		switch t.Key[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		case ',':
			if depth == 1 {
				if comma >= 0 {
					return "", "", "", "", ErrTemplateFormat
				}
				comma = i
			}
		}
	}
	if end < 0 || comma < 0 {
		return "", "", "", "", ErrTemplateFormat
	}
	low = strings.TrimSpace(t.Key[open+1 : comma])
	high = strings.TrimSpace(t.Key[comma+1 : end])
	if low == "" || high == "" {
		return "", "", "", "", ErrTemplateFormat
	}
	return t.Key[:open], low, high, t.Key[end+1:], nil
}

// Expand evaluates both bounds against scope and returns the concrete keys.
// An inverted range yields no keys.
func (t Template) Expand(scope expr.Scope) ([]string, error) {
	prefix, lowExpr, highExpr, suffix, err := t.Parts()
	if err != nil {
		return nil, err
	}
	lowF, err := expr.Evaluate(lowExpr, scope)
	if err != nil {
		return nil, err
	}
	highF, err := expr.Evaluate(highExpr, scope)
	if err != nil {
		return nil, err
	}
	low, high := math.Trunc(lowF), math.Trunc(highF)
	for _, b := range []float64{low, high} {
		if math.IsNaN(b) || math.IsInf(b, 0) || math.Abs(b) > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBound, b)
		}
	}
	if low > high {
		return nil, nil
	}
	if high-low >= MaxExpansion {
		return nil, fmt.Errorf("%w: %v..%v", ErrRangeTooLarge, low, high)
	}
	keys := make([]string, 0, int(high-low)+1)
	for i := int(low); i <= int(high); i++ {
		keys = append(keys, prefix+strconv.Itoa(i)+suffix)
	}
	return keys, nil
}

func templateDiagnostic(d *Dict, sec *ini.Section, t Template, err error) diag.Diagnostic {
	code := diag.DynamicKeyFormatError
	if errors.Is(err, expr.ErrUndefinedVariable) || errors.Is(err, expr.ErrNonNumericVariable) {
		code = diag.DynamicKeyVariableError
	}
	return diag.New(code, t.Key, d.Name, err.Error()).
		AtPos(sec.Pos()).
		In(sec.Name, t.Key, "")
}
