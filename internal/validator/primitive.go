package validator

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
)

func isPrimitive(typeName string) bool {
	switch typeName {
	case "int", "float", "double", "string":
		return true
	}
	return false
}

func (d *Dispatcher) checkPrimitive(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	var code diag.Code
	switch typeName {
	case "int":
		code = CheckInt(v.Text)
	case "float":
		code = CheckFloat(v.Text, 32)
	case "double":
		code = CheckFloat(v.Text, 64)
	case "string":
		if n := utf8.RuneCountInString(v.Text); n > d.maxStringLength() {
			return fail(diag.OverlongString, sec, key, v, n, d.maxStringLength())
		}
	}
	if code == "" {
		return nil
	}
	return fail(code, sec, key, v, v.Text)
}

// CheckInt validates a 32-bit integer. A leading '$' or trailing 'h'/'H'
// marks hexadecimal. It returns "" when the value is valid.
func CheckInt(s string) diag.Code {
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasSuffix(s, "h") || strings.HasSuffix(s, "H"):
		s, base = s[:len(s)-1], 16
	}

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == digitsStart {
		return diag.IllegalValue
	}
	if _, err := strconv.ParseInt(s[:end], base, 32); err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return diag.OverlongValue
		}
		return diag.IllegalValue
	}
	if end != len(s) {
		return diag.IllegalInt
	}
	return ""
}

// ParseFloat parses a float the way the checked format writes them: a
// trailing '%' divides by 100 and a leading '.' is allowed.
func ParseFloat(s string, bitSize int) (float64, diag.Code) {
	percent := strings.HasSuffix(s, "%")
	if percent {
		s = s[:len(s)-1]
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	end := floatPrefix(s)
	if end == 0 {
		return 0, diag.IllegalValue
	}
	f, err := strconv.ParseFloat(s[:end], bitSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, diag.OverlongValue
		}
		return 0, diag.IllegalValue
	}
	if end != len(s) {
		return f, diag.IllegalFloat
	}
	if percent {
		f /= 100
	}
	return f, ""
}

// CheckFloat validates a float of the given bit size.
func CheckFloat(s string, bitSize int) diag.Code {
	_, code := ParseFloat(s, bitSize)
	return code
}

// floatPrefix returns the length of the longest decimal float at the start
// of s, or 0 if there is none.
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i], 10) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j], 10) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k], 10) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')):
		return true
	}
	return false
}
