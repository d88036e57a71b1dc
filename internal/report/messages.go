// Package report turns diagnostics into human-readable and machine-readable
// output: message templates, text rendering with severity styling, a
// per-file summary table and a JSON document.
package report

import (
	"fmt"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// templates are filled with Diagnostic.Args in order.
var templates = map[diag.Code]string{
	diag.FileNotFound:             "File not found: %s",
	diag.FileUnreadable:           "Cannot read file %s: %s",
	diag.IncludeCycle:             "Include cycle: %s is already being loaded",
	diag.BracketClosed:            "Section header is missing ']': %s",
	diag.SectionFormat:            "Inheritance must be written [Child]:[Parent]: %s",
	diag.InheritanceBracketClosed: "Malformed inheritance, expected ':[Parent]' after ']': %s",
	diag.InheritanceSectionExist:  "Parent section [%s] is not defined before this section",
	diag.InheritanceDuplicateKey:  "Key %q is inherited twice (from [%s]): kept %q, ignored %q",
	diag.DuplicateKey:             "Key %q is already defined on line %d (%q), ignored %q",
	diag.UnusedGlobal:             "Global section [%s] is not present",
	diag.UnusedRegistry:           "Registry [%s] is not present",
	diag.SectionExist:             "Section [%s] registered in [%s] is not defined",
	diag.UnreachableSection:       "Section [%s] is never referenced",

	diag.TypeNotExist:            "Type %q is not defined in the schema",
	diag.KeyNotExist:             "Key %q is not part of type %s",
	diag.DynamicKeyFormatError:   "Dynamic key %q of type %s is malformed: %s",
	diag.DynamicKeyVariableError: "Dynamic key %q of type %s cannot be expanded: %s",
	diag.ListUnknownType:         "List type %s has no Type",
	diag.RangeConfig:             "Invalid configuration in [%s]: %s=%s",

	diag.EmptyValue:        "Key %q has an empty value",
	diag.IllegalValue:      "%q is not a valid number",
	diag.OverlongValue:     "%q is out of the representable range",
	diag.IllegalInt:        "%q is not a valid integer",
	diag.IllegalFloat:      "%q is not a valid floating point number",
	diag.OverlongString:    "String is %d characters long, the limit is %d",
	diag.OverRange:         "%s is outside [%v, %v]",
	diag.LimitPrefix:       "%q must start with one of: %s",
	diag.LimitSuffix:       "%q must end with one of: %s",
	diag.LimitValue:        "%q is not an allowed value",
	diag.LimitLength:       "Value is %d characters long, the limit is %d",
	diag.RangeIllegal:      "List has %d elements, expected between %d and %d",
	diag.SectionRefMissing: "Section [%s] referenced as %s is not defined",
	diag.ScriptResult:      "%s",
}

// Message renders the human-readable text of d.
func Message(d diag.Diagnostic) string {
	tpl, ok := templates[d.Code]
	if !ok {
		if len(d.Args) == 0 {
			return string(d.Code)
		}
		return fmt.Sprintf("%s: %s", d.Code, strings.TrimSuffix(fmt.Sprintln(d.Args...), "\n"))
	}
	return fmt.Sprintf(tpl, d.Args...)
}

// Location renders "file:line", "file" or "" depending on what d carries.
func Location(d diag.Diagnostic) string {
	switch {
	case d.File != "" && d.HasLocation():
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	default:
		return d.File
	}
}
