package validator

import (
	"errors"
	"math"
	"testing"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	d        *Dispatcher
	visited  map[*ini.Section]bool
	reported []diag.Diagnostic
}

func newTestEnv(d *Dispatcher) *testEnv {
	return &testEnv{d: d, visited: make(map[*ini.Section]bool)}
}

func (e *testEnv) Visit(sec *ini.Section) bool {
	if e.visited[sec] {
		return false
	}
	e.visited[sec] = true
	return true
}

func (e *testEnv) Check(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	return e.d.Check(e, sec, key, v, typeName)
}

func (e *testEnv) Report(d diag.Diagnostic) { e.reported = append(e.reported, d) }
func (e *testEnv) FileType() string         { return "" }

func section(name string, kv ...string) *ini.Section {
	s := ini.NewSection(name)
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], ini.Value{Text: kv[i+1], File: "t.ini", Line: i/2 + 1})
	}
	return s
}

func check(t *testing.T, d *Dispatcher, value, typeName string) []diag.Code {
	t.Helper()
	env := newTestEnv(d)
	found := d.Check(env, section("S"), "Key", ini.Value{Text: value, Line: 3}, typeName)
	var codes []diag.Code
	for _, f := range found {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestCheckInt(t *testing.T) {
	testCases := []struct {
		in   string
		want diag.Code
	}{
		{"42", ""},
		{"-7", ""},
		{"+7", ""},
		{"$FF", ""},
		{"1Ah", ""},
		{"ffH", ""},
		{"2147483647", ""},
		{"2147483648", diag.OverlongValue},
		{"$GG", diag.IllegalValue},
		{"abc", diag.IllegalValue},
		{"-", diag.IllegalValue},
		{"$", diag.IllegalValue},
		{"12abc", diag.IllegalInt},
		{"1.5", diag.IllegalInt},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckInt(tc.in))
		})
	}
}

func TestParseFloat(t *testing.T) {
	testCases := []struct {
		in      string
		bitSize int
		want    float64
		code    diag.Code
	}{
		{"1.5", 32, 1.5, ""},
		{".5", 32, 0.5, ""},
		{"-.5", 64, -0.5, ""},
		{"50%", 32, 0.5, ""},
		{"3.", 64, 3, ""},
		{"1e3", 64, 1000, ""},
		{"1e", 64, 1, diag.IllegalFloat},
		{"1.5x", 32, 1.5, diag.IllegalFloat},
		{"%", 32, 0, diag.IllegalValue},
		{"x1", 32, 0, diag.IllegalValue},
		{"1e40", 32, 0, diag.OverlongValue},
		{"1e40", 64, 1e40, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, code := ParseFloat(tc.in, tc.bitSize)
			assert.Equal(t, tc.code, code)
			if code == "" {
				assert.InDelta(t, tc.want, got, 1e-6)
			}
		})
	}
}

func TestDispatcher_Primitives(t *testing.T) {
	d := &Dispatcher{MaxStringLength: 4}

	assert.Empty(t, check(t, d, "12", "int"))
	assert.Equal(t, []diag.Code{diag.IllegalFloat}, check(t, d, "1.2.3", "float"))
	assert.Empty(t, check(t, d, "1.25", "double"))
	assert.Empty(t, check(t, d, "abcd", "string"))
	assert.Equal(t, []diag.Code{diag.OverlongString}, check(t, d, "abcde", "string"))
	assert.Equal(t, []diag.Code{diag.EmptyValue}, check(t, d, "", "int"))

	found := d.Check(newTestEnv(d), section("S"), "Key", ini.Value{Text: "x", File: "a.ini", FileIndex: 2, Line: 9}, "int")
	require.Len(t, found, 1)
	assert.Equal(t, "a.ini", found[0].File)
	assert.Equal(t, 2, found[0].FileIndex)
	assert.Equal(t, 9, found[0].Line)
	assert.Equal(t, "S", found[0].Section)
	assert.Equal(t, "Key", found[0].Key)
}

func TestDispatcher_StringLimitDefault(t *testing.T) {
	d := &Dispatcher{}
	long := make([]byte, DefaultMaxStringLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Empty(t, check(t, d, string(long[:DefaultMaxStringLength]), "string"))
	assert.Equal(t, []diag.Code{diag.OverlongString}, check(t, d, string(long), "string"))
}

func TestDispatcher_ResolveOrder(t *testing.T) {
	d := &Dispatcher{
		Numbers:  map[string]NumberRule{"int": {}, "Num": {}, "Both": {}},
		Limits:   map[string]LimitRule{"Both": {}, "Lim": {}},
		Lists:    map[string]ListRule{"Lim": {}, "Lst": {}},
		Sections: map[string]*schema.Dict{"Lst": {}, "Unit": {}},
		External: fakeExternal{types: map[string]bool{"Unit": true, "Color": true}},
	}
	assert.Equal(t, KindPrimitive, d.Resolve("int"))
	assert.Equal(t, KindNumber, d.Resolve("Both"))
	assert.Equal(t, KindLimit, d.Resolve("Lim"))
	assert.Equal(t, KindList, d.Resolve("Lst"))
	assert.Equal(t, KindSection, d.Resolve("Unit"))
	assert.Equal(t, KindExternal, d.Resolve("Color"))
	assert.Equal(t, KindUnknown, d.Resolve("Nope"))
	assert.Equal(t, "external", KindExternal.String())
}

func TestNumberRule(t *testing.T) {
	rule, found := ParseNumberRule(section("Percent", "Range", "0, 100", "Type", "int"))
	require.Empty(t, found)
	assert.Equal(t, NumberRule{Min: 0, Max: 100, Type: "int"}, rule)

	d := &Dispatcher{Numbers: map[string]NumberRule{"Percent": rule, "Any": {Min: math.Inf(-1), Max: math.Inf(1)}}}
	assert.Empty(t, check(t, d, "100", "Percent"))
	assert.Equal(t, []diag.Code{diag.OverRange}, check(t, d, "101", "Percent"))
	assert.Equal(t, []diag.Code{diag.IllegalInt}, check(t, d, "5.5", "Percent"), "the type pre-check runs first")
	assert.Empty(t, check(t, d, "-1e9", "Any"))
	assert.Equal(t, []diag.Code{diag.IllegalValue}, check(t, d, "many", "Any"))
}

func TestParseNumberRule_Defaults(t *testing.T) {
	rule, found := ParseNumberRule(section("N"))
	assert.Empty(t, found)
	assert.True(t, math.IsInf(rule.Min, -1))
	assert.True(t, math.IsInf(rule.Max, 1))

	for _, bad := range []string{"5", "a,b", "9,1", ",3"} {
		_, found := ParseNumberRule(section("N", "Range", bad))
		require.Len(t, found, 1, bad)
		assert.Equal(t, diag.RangeConfig, found[0].Code)
	}
}

func TestLimitRule(t *testing.T) {
	rule, found := ParseLimitRule(section("Weapon",
		"StartWith", "Big, Small",
		"EndWith", "Gun",
		"LimitIn", "BigGun",
		"LimitIn.More", "SmallGun",
		"MaxLength", "8",
	))
	require.Empty(t, found)
	assert.Equal(t, []string{"BigGun", "SmallGun"}, rule.LimitIn)
	assert.False(t, rule.CaseSensitive)

	d := &Dispatcher{Limits: map[string]LimitRule{"Weapon": rule}}

	testCases := []struct {
		value string
		want  []diag.Code
	}{
		{"BigGun", nil},
		{"biggun", nil},
		{"SMALLGUN", nil},
		{"HugeGun", []diag.Code{diag.LimitPrefix}},
		{"BigCannon", []diag.Code{diag.LimitSuffix, diag.LimitLength}},
		{"BigOldGun", []diag.Code{diag.LimitValue, diag.LimitLength}},
		{"SmallGn", []diag.Code{diag.LimitSuffix}},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.want, check(t, d, tc.value, "Weapon"))
		})
	}
}

func TestLimitRule_CaseSensitive(t *testing.T) {
	for _, key := range []string{"CaseSensitive", "CaseSenstive"} {
		rule, _ := ParseLimitRule(section("L", "LimitIn", "Yes", key, "true"))
		d := &Dispatcher{Limits: map[string]LimitRule{"L": rule}}
		assert.Empty(t, check(t, d, "Yes", "L"), key)
		assert.Equal(t, []diag.Code{diag.LimitValue}, check(t, d, "yes", "L"), key)
	}
}

func TestListRule(t *testing.T) {
	rule, found := ParseListRule(section("Coords", "Type", "int||Small", "Range", "2,3"))
	require.Empty(t, found)
	assert.Equal(t, []string{"int", "Small"}, rule.Types)

	d := &Dispatcher{
		Lists:   map[string]ListRule{"Coords": rule, "Free": {Types: []string{"int"}, Max: math.MaxInt}},
		Numbers: map[string]NumberRule{"Small": {Min: 0, Max: 10}},
	}

	assert.Empty(t, check(t, d, "1, 2 ,3", "Coords"))
	assert.Equal(t, []diag.Code{diag.RangeIllegal}, check(t, d, "1", "Coords"))
	assert.Equal(t, []diag.Code{diag.RangeIllegal}, check(t, d, "1,2,3,4", "Coords"))
	assert.Equal(t, []diag.Code{diag.OverRange}, check(t, d, "1,20", "Coords"), "every element must satisfy every type")
	assert.Equal(t, []diag.Code{diag.IllegalValue, diag.EmptyValue}, check(t, d, "x,,3", "Free"))
}

func TestParseListRule_Errors(t *testing.T) {
	_, found := ParseListRule(section("L"))
	require.Len(t, found, 1)
	assert.Equal(t, diag.ListUnknownType, found[0].Code)

	_, found = ParseListRule(section("L", "Type", "int", "Range", "5,1"))
	require.Len(t, found, 1)
	assert.Equal(t, diag.RangeConfig, found[0].Code)
}

func TestDispatcher_SectionReference(t *testing.T) {
	target := ini.NewDocument()
	weapon := target.AddSection("Cannon")
	weapon.Set("Damage", ini.Value{Text: "oops", File: "rules.ini", Line: 12})

	d := &Dispatcher{
		Sections: map[string]*schema.Dict{"Weapon": schema.Build(section("Weapon", "Damage", "int"))},
		Target:   target,
		Optional: map[string]bool{"Anim": true},
	}
	d.Sections["Anim"] = schema.Build(section("Anim"))
	env := newTestEnv(d)

	assert.Empty(t, d.Check(env, section("Unit"), "Primary", ini.Value{Text: "Cannon"}, "Weapon"))
	require.Len(t, env.reported, 1, "diagnostics of the referenced section go to the env")
	assert.Equal(t, diag.IllegalValue, env.reported[0].Code)
	assert.Equal(t, "Cannon", env.reported[0].Section)

	assert.Empty(t, d.Check(env, section("Unit"), "Primary", ini.Value{Text: "Cannon"}, "Weapon"))
	assert.Len(t, env.reported, 1, "a section is validated once")

	assert.Empty(t, check(t, d, "none", "Weapon"))
	assert.Empty(t, check(t, d, "<None>", "Weapon"))
	assert.Empty(t, check(t, d, "Missing", "Anim"))
	assert.Equal(t, []diag.Code{diag.SectionRefMissing}, check(t, d, "Missing", "Weapon"))
}

func TestDispatcher_UnknownTypeReportedOnce(t *testing.T) {
	d := &Dispatcher{}
	env := newTestEnv(d)

	assert.Empty(t, d.Check(env, section("S"), "A", ini.Value{Text: "1"}, "Mystery"))
	assert.Empty(t, d.Check(env, section("S"), "B", ini.Value{Text: "1"}, "Mystery"))

	require.Len(t, env.reported, 1)
	assert.Equal(t, diag.TypeNotExist, env.reported[0].Code)
	assert.Equal(t, "A", env.reported[0].Key)
}

type fakeExternal struct {
	types    map[string]bool
	severity diag.Severity
	msg      string
	err      error
}

func (f fakeExternal) Supports(typeName string) bool { return f.types[typeName] }

func (f fakeExternal) Validate(_ *ini.Section, _, _, _ string) (diag.Severity, string, error) {
	return f.severity, f.msg, f.err
}

func TestDispatcher_External(t *testing.T) {
	types := map[string]bool{"Color": true}

	d := &Dispatcher{External: fakeExternal{types: types, severity: diag.SeverityWarning, msg: "too dark"}}
	found := d.Check(newTestEnv(d), section("S"), "Key", ini.Value{Text: "0,0,0"}, "Color")
	require.Len(t, found, 1)
	assert.Equal(t, diag.ScriptResult, found[0].Code)
	assert.Equal(t, diag.SeverityWarning, found[0].Severity)
	assert.Equal(t, []any{"too dark"}, found[0].Args)

	d = &Dispatcher{External: fakeExternal{types: types}}
	assert.Empty(t, check(t, d, "1,2,3", "Color"))

	d = &Dispatcher{External: fakeExternal{types: types, err: errors.New("boom")}}
	assert.Empty(t, check(t, d, "1,2,3", "Color"), "script failures are logged, not reported")
}

func TestIsTrue(t *testing.T) {
	for _, s := range []string{"1", "yes", "Y", "true", " T"} {
		assert.True(t, IsTrue(s), s)
	}
	for _, s := range []string{"", "0", "no", "false"} {
		assert.False(t, IsTrue(s), s)
	}
}
