package diag

// Code is a message template key. The report package maps codes to
// human-readable templates; Diagnostic.Args fill the template.
type Code string

// Parse-level and structural codes.
const (
	FileNotFound             Code = "FileNotFound"
	FileUnreadable           Code = "FileUnreadable"
	IncludeCycle             Code = "IncludeCycle"
	BracketClosed            Code = "BracketClosed"
	SectionFormat            Code = "SectionFormat"
	InheritanceBracketClosed Code = "InheritanceBracketClosed"
	InheritanceSectionExist  Code = "InheritanceSectionExist"
	InheritanceDuplicateKey  Code = "InheritanceDuplicateKey"
	DuplicateKey             Code = "DuplicateKey"
	UnusedGlobal             Code = "UnusedGlobal"
	UnusedRegistry           Code = "UnusedRegistry"
	SectionExist             Code = "SectionExist"
	UnreachableSection       Code = "UnreachableSection"
)

// Schema-level and expression-level codes.
const (
	TypeNotExist            Code = "TypeNotExist"
	KeyNotExist             Code = "KeyNotExist"
	DynamicKeyFormatError   Code = "DynamicKeyFormatError"
	DynamicKeyVariableError Code = "DynamicKeyVariableError"
	ListUnknownType         Code = "ListUnknownType"
	RangeConfig             Code = "RangeConfig"
)

// Value-level codes.
const (
	EmptyValue        Code = "EmptyValue"
	IllegalValue      Code = "IllegalValue"
	OverlongValue     Code = "OverlongValue"
	IllegalInt        Code = "IllegalInt"
	IllegalFloat      Code = "IllegalFloat"
	OverlongString    Code = "OverlongString"
	OverRange         Code = "OverRange"
	LimitPrefix       Code = "LimitPrefix"
	LimitSuffix       Code = "LimitSuffix"
	LimitValue        Code = "LimitValue"
	LimitLength       Code = "LimitLength"
	RangeIllegal      Code = "RangeIllegal"
	SectionRefMissing Code = "SectionRefMissing"
	ScriptResult      Code = "ScriptResult"
)

var defaultSeverities = map[Code]Severity{
	FileNotFound:             SeverityError,
	FileUnreadable:           SeverityError,
	IncludeCycle:             SeverityError,
	BracketClosed:            SeverityError,
	SectionFormat:            SeverityError,
	InheritanceBracketClosed: SeverityError,
	InheritanceSectionExist:  SeverityError,
	InheritanceDuplicateKey:  SeverityError,
	DuplicateKey:             SeverityError,
	UnusedGlobal:             SeverityInfo,
	UnusedRegistry:           SeverityInfo,
	SectionExist:             SeverityWarning,
	UnreachableSection:       SeverityInfo,

	TypeNotExist:            SeverityWarning,
	KeyNotExist:             SeverityInfo,
	DynamicKeyFormatError:   SeverityWarning,
	DynamicKeyVariableError: SeverityWarning,
	ListUnknownType:         SeverityError,
	RangeConfig:             SeverityError,

	EmptyValue:        SeverityError,
	IllegalValue:      SeverityError,
	OverlongValue:     SeverityError,
	IllegalInt:        SeverityError,
	IllegalFloat:      SeverityError,
	OverlongString:    SeverityError,
	OverRange:         SeverityError,
	LimitPrefix:       SeverityError,
	LimitSuffix:       SeverityError,
	LimitValue:        SeverityError,
	LimitLength:       SeverityError,
	RangeIllegal:      SeverityError,
	SectionRefMissing: SeverityError,
	ScriptResult:      SeverityError,
}

// DefaultSeverity returns the built-in severity for c. Unknown codes are
// errors.
func (c Code) DefaultSeverity() Severity {
	if s, ok := defaultSeverities[c]; ok {
		return s
	}
	return SeverityError
}

// Known reports whether c is one of the codes defined in this package.
func (c Code) Known() bool {
	_, ok := defaultSeverities[c]
	return ok
}

// Codes returns every known code.
func Codes() []Code {
	codes := make([]Code, 0, len(defaultSeverities))
	for c := range defaultSeverities {
		codes = append(codes, c)
	}
	return codes
}
