package validator

import (
	"math"
	"strconv"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/schema"
)

// NumberRule bounds a numeric value to [Min, Max]. Type, when set, is
// checked first; "int" is the usual choice.
type NumberRule struct {
	Min, Max float64
	Type     string
}

// ParseNumberRule reads Range=min,max and Type from a schema section.
func ParseNumberRule(sec *ini.Section) (NumberRule, []diag.Diagnostic) {
	r := NumberRule{Min: math.Inf(-1), Max: math.Inf(1)}
	if v, ok := sec.Get("Type"); ok {
		r.Type = v.Text
	}
	v, ok := sec.Get("Range")
	if !ok {
		return r, nil
	}
	lo, hi, ok := splitRange(v.Text)
	if !ok {
		return r, configError(sec, "Range", v)
	}
	minV, err1 := strconv.ParseFloat(lo, 64)
	maxV, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil || minV > maxV {
		return r, configError(sec, "Range", v)
	}
	r.Min, r.Max = minV, maxV
	return r, nil
}

func (r NumberRule) check(d *Dispatcher, env schema.Env, sec *ini.Section, key string, v ini.Value) []diag.Diagnostic {
	if r.Type != "" {
		if found := d.Check(env, sec, key, v, r.Type); len(found) > 0 {
			return found
		}
	}
	f, code := ParseFloat(v.Text, 64)
	if code != "" {
		return fail(code, sec, key, v, v.Text)
	}
	if f < r.Min || f > r.Max {
		return fail(diag.OverRange, sec, key, v, v.Text, r.Min, r.Max)
	}
	return nil
}

// LimitRule constrains the shape of a string value.
type LimitRule struct {
	StartWith     []string
	EndWith       []string
	LimitIn       []string
	MaxLength     int
	CaseSensitive bool
}

// ParseLimitRule reads StartWith, EndWith, LimitIn (plus any LimitIn.*
// continuation keys), MaxLength and CaseSensitive from a schema section.
func ParseLimitRule(sec *ini.Section) (LimitRule, []diag.Diagnostic) {
	var r LimitRule
	var found []diag.Diagnostic
	r.StartWith = splitList(sec, "StartWith")
	r.EndWith = splitList(sec, "EndWith")
	r.LimitIn = splitList(sec, "LimitIn")
	for _, k := range sec.Keys() {
		if strings.HasPrefix(k, "LimitIn.") {
			r.LimitIn = append(r.LimitIn, splitList(sec, k)...)
		}
	}
	if v, ok := sec.Get("MaxLength"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v.Text))
		if err != nil || n < 0 {
			found = append(found, configError(sec, "MaxLength", v)...)
		} else {
			r.MaxLength = n
		}
	}
	for _, k := range []string{"CaseSensitive", "CaseSenstive"} {
		if v, ok := sec.Get(k); ok {
			r.CaseSensitive = IsTrue(v.Text)
		}
	}
	return r, found
}

func (r LimitRule) check(sec *ini.Section, key string, v ini.Value) []diag.Diagnostic {
	var found []diag.Diagnostic
	target := r.fold(v.Text)
	switch {
	case len(r.StartWith) > 0 && !r.anyMatch(r.StartWith, func(s string) bool { return strings.HasPrefix(target, s) }):
		found = fail(diag.LimitPrefix, sec, key, v, v.Text, strings.Join(r.StartWith, ","))
	case len(r.EndWith) > 0 && !r.anyMatch(r.EndWith, func(s string) bool { return strings.HasSuffix(target, s) }):
		found = fail(diag.LimitSuffix, sec, key, v, v.Text, strings.Join(r.EndWith, ","))
	case len(r.LimitIn) > 0 && !r.anyMatch(r.LimitIn, func(s string) bool { return target == s }):
		found = fail(diag.LimitValue, sec, key, v, v.Text)
	}
	if n := len(v.Text); r.MaxLength > 0 && n > r.MaxLength {
		found = append(found, fail(diag.LimitLength, sec, key, v, n, r.MaxLength)...)
	}
	return found
}

func (r LimitRule) anyMatch(candidates []string, match func(string) bool) bool {
	for _, c := range candidates {
		if match(r.fold(c)) {
			return true
		}
	}
	return false
}

func (r LimitRule) fold(s string) string {
	if r.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// ListRule validates comma-separated values. Every element must satisfy
// every listed type.
type ListRule struct {
	Types    []string
	Min, Max int
}

// ParseListRule reads Type (split on "||") and Range=min,max.
func ParseListRule(sec *ini.Section) (ListRule, []diag.Diagnostic) {
	r := ListRule{Min: 0, Max: math.MaxInt}
	v, ok := sec.Get("Type")
	if !ok || strings.TrimSpace(v.Text) == "" {
		d := diag.New(diag.ListUnknownType, sec.Name).
			AtPos(sec.Pos()).
			In(sec.Name, "Type", "")
		return r, []diag.Diagnostic{d}
	}
	r.Types = schema.ParseDictData(v.Text).Types

	rv, ok := sec.Get("Range")
	if !ok {
		return r, nil
	}
	lo, hi, ok := splitRange(rv.Text)
	if !ok {
		return r, configError(sec, "Range", rv)
	}
	minV, err1 := strconv.Atoi(lo)
	maxV, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil || minV < 0 || minV > maxV {
		return r, configError(sec, "Range", rv)
	}
	r.Min, r.Max = minV, maxV
	return r, nil
}

func (r ListRule) check(d *Dispatcher, env schema.Env, sec *ini.Section, key string, v ini.Value) []diag.Diagnostic {
	elements := strings.Split(v.Text, ",")
	if n := len(elements); n < r.Min || n > r.Max {
		return fail(diag.RangeIllegal, sec, key, v, n, r.Min, r.Max)
	}
	var found []diag.Diagnostic
	for _, e := range elements {
		elem := v
		elem.Text = strings.TrimSpace(e)
		for _, t := range r.Types {
			if got := d.Check(env, sec, key, elem, t); len(got) > 0 {
				found = append(found, got...)
				break
			}
		}
	}
	return found
}

// IsTrue interprets the format's boolean spelling: a value starting with
// 1, y or t (any case) is true.
func IsTrue(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[0] {
	case '1', 'y', 'Y', 't', 'T':
		return true
	}
	return false
}

func splitRange(s string) (string, string, bool) {
	lo, hi, ok := strings.Cut(s, ",")
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	return lo, hi, ok && lo != "" && hi != ""
}

func splitList(sec *ini.Section, key string) []string {
	v, ok := sec.Get(key)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v.Text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func configError(sec *ini.Section, key string, v ini.Value) []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.New(diag.RangeConfig, sec.Name, key, v.Text).
			AtPos(v.Pos()).
			In(sec.Name, key, v.Text),
	}
}
