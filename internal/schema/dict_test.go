package schema

import (
	"strconv"
	"testing"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv accepts "int" for integer values, "word" for non-empty values and
// rejects "never" outright.
type fakeEnv struct {
	visited  map[*ini.Section]bool
	reported []diag.Diagnostic
	checked  []string
	fileType string
}

func newFakeEnv() *fakeEnv { return &fakeEnv{visited: make(map[*ini.Section]bool)} }

func (e *fakeEnv) Visit(sec *ini.Section) bool {
	if e.visited[sec] {
		return false
	}
	e.visited[sec] = true
	return true
}

func (e *fakeEnv) Check(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	e.checked = append(e.checked, key+":"+typeName)
	fail := func(code diag.Code) []diag.Diagnostic {
		return []diag.Diagnostic{diag.New(code).In(sec.Name, key, v.Text)}
	}
	switch typeName {
	case "int":
		if _, err := strconv.Atoi(v.Text); err != nil {
			return fail(diag.IllegalInt)
		}
	case "word":
		if v.Text == "" {
			return fail(diag.EmptyValue)
		}
	case "never":
		return fail(diag.IllegalValue)
	}
	return nil
}

func (e *fakeEnv) Report(d diag.Diagnostic) { e.reported = append(e.reported, d) }
func (e *fakeEnv) FileType() string         { return e.fileType }

func (e *fakeEnv) codes() []diag.Code {
	var out []diag.Code
	for _, d := range e.reported {
		out = append(out, d.Code)
	}
	return out
}

func section(name string, kv ...string) *ini.Section {
	s := ini.NewSection(name)
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], ini.Value{Text: kv[i+1], File: "t.ini", Line: i/2 + 1})
	}
	return s
}

func TestParseDictData(t *testing.T) {
	testCases := []struct {
		raw  string
		want DictData
	}{
		{"int", DictData{Types: []string{"int"}}},
		{" int || float , 5 ", DictData{Types: []string{"int", "float"}, Default: "5"}},
		{"string,,rules", DictData{Types: []string{"string"}, FileScope: "rules"}},
		{"a||,x,y,z", DictData{Types: []string{"a"}, Default: "x", FileScope: "y,z"}},
		{"", DictData{}},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDictData(tc.raw))
		})
	}
}

func TestBuild(t *testing.T) {
	d := Build(section("Unit", "Speed", "int", "Stage(0,Count)", "word", "Count", "int||word"))

	assert.Equal(t, "Unit", d.Name)
	assert.Len(t, d.Keys, 2)
	require.Len(t, d.Templates, 1)
	assert.Equal(t, "Stage(0,Count)", d.Templates[0].Key)
	assert.Equal(t, []string{"word", "int"}, d.Types())
}

func TestTemplate_Expand(t *testing.T) {
	scope := section("S", "Count", "3", "Name", "x", "Big", "1e300")

	testCases := []struct {
		name string
		key  string
		want []string
		err  error
	}{
		{"plain", "Stage(0,2)", []string{"Stage0", "Stage1", "Stage2"}, nil},
		{"suffix", "Anim(1,2).Frames", []string{"Anim1.Frames", "Anim2.Frames"}, nil},
		{"variable bound", "Step(1,Count)", []string{"Step1", "Step2", "Step3"}, nil},
		{"nested expression", "Step((Count-1)*1,Count)", []string{"Step2", "Step3"}, nil},
		{"truncated", "K(0,Count/2)", []string{"K0", "K1"}, nil},
		{"inverted", "K(Count,0)", nil, nil},
		{"one part", "K(3)", nil, ErrTemplateFormat},
		{"three parts", "K(1,2,3)", nil, ErrTemplateFormat},
		{"unclosed", "K(1,2", nil, ErrTemplateFormat},
		{"empty bound", "K(,2)", nil, ErrTemplateFormat},
		{"too large", "K(0,100000000)", nil, ErrRangeTooLarge},
		{"infinite bound", "K(0,Big*Big)", nil, ErrInvalidBound},
		{"bound beyond int range", "K(Big,Big)", nil, ErrInvalidBound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Template{Key: tc.key}.Expand(scope)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateSection_AlternativeTypes(t *testing.T) {
	d := Build(section("Unit", "A", "int||word", "B", "int||never", "C", "never||int"))
	env := newFakeEnv()
	sec := section("Tank", "A", "fast", "B", "oops", "C", "oops")

	d.ValidateSection(env, sec)

	require.Len(t, env.reported, 2)
	assert.Equal(t, diag.IllegalInt, env.reported[0].Code, "the first type's diagnostic is reported")
	assert.Equal(t, "B", env.reported[0].Key)
	assert.Equal(t, diag.IllegalValue, env.reported[1].Code)
	assert.Equal(t, "C", env.reported[1].Key)
	assert.Equal(t, []string{"A:int", "A:word", "B:int", "B:never", "C:never", "C:int"}, env.checked)
}

func TestValidateSection_UnknownKey(t *testing.T) {
	d := Build(section("Unit", "Speed", "int"))
	env := newFakeEnv()
	d.ValidateSection(env, section("Tank", "Speed", "4", "Sped", "4"))

	require.Equal(t, []diag.Code{diag.KeyNotExist}, env.codes())
	got := env.reported[0]
	assert.Equal(t, "Sped", got.Key)
	assert.Equal(t, "Tank", got.Section)
	assert.Equal(t, 2, got.Line)
	assert.Equal(t, diag.SeverityInfo, got.Severity)
}

func TestValidateSection_IsIdempotent(t *testing.T) {
	d := Build(section("Unit", "Speed", "int"))
	env := newFakeEnv()
	sec := section("Tank", "Speed", "x")

	d.ValidateSection(env, sec)
	d.ValidateSection(env, sec)

	assert.Equal(t, []diag.Code{diag.IllegalInt}, env.codes())
}

func TestValidateSection_DynamicKeys(t *testing.T) {
	d := Build(section("Unit", "Count", "int", "Stage(0,Count-1)", "int"))
	env := newFakeEnv()
	sec := section("Tank", "Count", "2", "Stage0", "1", "Stage1", "bad", "Stage2", "3")

	d.ValidateSection(env, sec)

	require.Equal(t, []diag.Code{diag.IllegalInt, diag.KeyNotExist}, env.codes())
	assert.Equal(t, "Stage1", env.reported[0].Key)
	assert.Equal(t, "Stage2", env.reported[1].Key, "keys outside the expanded range are unknown")
}

func TestValidateSection_TemplateErrorsDoNotStopSiblings(t *testing.T) {
	d := Build(section("Unit",
		"Speed", "int",
		"A(0,Missing)", "int",
		"B(0,Name)", "int",
		"C(0)", "int",
		"Name", "word",
	))
	env := newFakeEnv()
	d.ValidateSection(env, section("Tank", "Speed", "x", "Name", "tank"))

	assert.ElementsMatch(t, []diag.Code{
		diag.DynamicKeyVariableError,
		diag.DynamicKeyVariableError,
		diag.DynamicKeyFormatError,
		diag.IllegalInt,
	}, env.codes())
}

func TestValidateSection_FileScope(t *testing.T) {
	d := Build(section("Unit", "Art", "never,,art", "Rules", "never,,RULES"))
	env := newFakeEnv()
	env.fileType = "rules"

	d.ValidateSection(env, section("Tank", "Art", "x", "Rules", "y"))

	require.Len(t, env.reported, 1)
	assert.Equal(t, "Rules", env.reported[0].Key, "scope tags compare case-insensitively")
}
