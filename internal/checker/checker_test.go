package checker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaINI = `[Globals]
General

[General]
Speed=int

[Sections]
UnitType
WeaponType

[UnitType]
Primary=WeaponType
Strength=int
WeaponCount=int
Weapon(0,WeaponCount-1)=WeaponType

[WeaponType]
Damage=int
Next=WeaponType

[Registries]
VehicleTypes=UnitType
InfantryTypes=UnitType
`

const targetINI = `[General]
Speed=fast
[VehicleTypes]
0=Tank
1=Missing
Jeep
[Tank]
Primary=Cannon
Strength=abc
WeaponCount=2
Weapon0=Cannon
Weapon1=Laser
Colour=red
[Jeep]
Primary=Cannon
Strength=5
[Cannon]
Damage=10
Next=Cannon
[Orphan]
x=1
`

func load(t *testing.T, files map[string]string, name string) *ini.Document {
	t.Helper()
	dir := testutil.WriteFiles(t, files)
	return ini.Parse(context.Background(), filepath.Join(dir, name), nil)
}

func codes(diags []diag.Diagnostic) []diag.Code {
	var out []diag.Code
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": schemaINI}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": targetINI}, "rules.ini")

	got := Run(context.Background(), schemaDoc, target)

	require.Equal(t, []diag.Code{
		diag.IllegalValue,
		diag.SectionRefMissing,
		diag.IllegalValue,
		diag.KeyNotExist,
		diag.SectionExist,
		diag.DynamicKeyVariableError,
		diag.UnusedRegistry,
		diag.UnreachableSection,
	}, codes(got))

	assert.Equal(t, "General", got[0].Section)
	assert.Equal(t, 2, got[0].Line)

	assert.Equal(t, "Weapon1", got[1].Key)
	assert.Equal(t, []any{"Laser", "WeaponType"}, got[1].Args)

	assert.Equal(t, "Strength", got[2].Key)
	assert.Equal(t, 9, got[2].Line)
	assert.Equal(t, "Colour", got[3].Key)

	assert.Equal(t, "VehicleTypes", got[4].Section)
	assert.Equal(t, 5, got[4].Line)
	assert.Equal(t, diag.SeverityWarning, got[4].Severity)

	assert.Equal(t, "Jeep", got[5].Section, "Jeep has no WeaponCount")
	assert.Equal(t, 14, got[5].Line)

	assert.Equal(t, []any{"InfantryTypes"}, got[6].Args)
	assert.False(t, got[6].HasLocation())

	assert.Equal(t, "Orphan", got[7].Section)
	assert.Equal(t, 20, got[7].Line)
	assert.Equal(t, "rules.ini", got[7].File)
}

func TestChecker_RunsAreIndependent(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": schemaINI}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": targetINI}, "rules.ini")
	c := New(context.Background(), schemaDoc, nil)

	first := diag.NewCollector(nil)
	stats := c.Run(context.Background(), target, first)
	second := diag.NewCollector(nil)
	c.Run(context.Background(), target, second)

	assert.Equal(t, first.Diagnostics(), second.Diagnostics())
	assert.Equal(t, Stats{Sections: 6, Visited: 5, Unreachable: 1}, stats)
}

func TestRun_PresetItems(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": `
[Sections]
UnitType
[UnitType]
Strength=int
[Registries]
Specials=UnitType
Loose=UnitType
[Specials]
PresetItems=Ghost, Spectre
[Loose]
CheckExist=no
`}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": `
[Ghost]
Strength=x
[Loose]
1=Nobody
`}, "rules.ini")

	got := Run(context.Background(), schemaDoc, target)

	require.Equal(t, []diag.Code{diag.IllegalValue, diag.SectionExist}, codes(got))
	assert.Equal(t, []any{"Spectre", "Specials"}, got[1].Args)
}

func TestRun_MissingSchemaIsNotFatal(t *testing.T) {
	target := load(t, map[string]string{"rules.ini": "[A]\n[B]\n"}, "rules.ini")

	got := Run(context.Background(), ini.NewDocument(), target)

	assert.Equal(t, []diag.Code{diag.UnreachableSection, diag.UnreachableSection}, codes(got))
}

func TestRun_IncludeSectionIsNotUnreachable(t *testing.T) {
	target := load(t, map[string]string{
		"rules.ini": "[#include]\n1=more.ini\n",
		"more.ini":  "[Extra]\n",
	}, "rules.ini")

	got := Run(context.Background(), ini.NewDocument(), target)

	require.Len(t, got, 1)
	assert.Equal(t, "Extra", got[0].Section)
	assert.Equal(t, "more.ini", got[0].File)
	assert.Equal(t, 1, got[0].FileIndex)
}

func TestRun_Options(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": `
[Globals]
General
[General]
Name=string
Anim=AnimType
Art=int,,art
[Sections]
AnimType
[AnimType]
`}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": `
[General]
Name=abcdef
Anim=NoSuchAnim
Art=x
`}, "rules.ini")

	got := Run(context.Background(), schemaDoc, target)
	assert.Equal(t, []diag.Code{diag.SectionRefMissing, diag.IllegalValue}, codes(got))

	got = Run(context.Background(), schemaDoc, target,
		WithMaxStringLength(3),
		WithOptionalReferenceTypes("AnimType"),
		WithFileType("rules"),
	)
	assert.Equal(t, []diag.Code{diag.OverlongString}, codes(got))
}

type fakeScript struct{ calls []string }

func (f *fakeScript) Supports(typeName string) bool { return typeName == "Color" }

func (f *fakeScript) Validate(sec *ini.Section, key, value, _ string) (diag.Severity, string, error) {
	f.calls = append(f.calls, sec.Name+"."+key+"="+value)
	if value == "0,0,0" {
		return diag.SeverityInfo, "black", nil
	}
	return diag.SeverityOff, "", nil
}

func TestRun_External(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": "[Globals]\nGeneral\n[General]\nTint=Color\nGlow=Color\n"}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": "[General]\nTint=0,0,0\nGlow=1,2,3\n"}, "rules.ini")
	script := &fakeScript{}

	got := Run(context.Background(), schemaDoc, target, WithExternal(script))

	assert.Equal(t, []string{"General.Tint=0,0,0", "General.Glow=1,2,3"}, script.calls)
	require.Equal(t, []diag.Code{diag.ScriptResult}, codes(got))
	assert.Equal(t, diag.SeverityInfo, got[0].Severity)
}

type recordingProgress struct {
	phases []string
	steps  int
}

func (p *recordingProgress) Start(phase string, _ int) { p.phases = append(p.phases, phase) }
func (p *recordingProgress) Step()                     { p.steps++ }

func TestRun_Progress(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": schemaINI}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": targetINI}, "rules.ini")
	p := &recordingProgress{}

	Run(context.Background(), schemaDoc, target, WithProgress(p))

	assert.Equal(t, []string{"globals", "registries", "unreachable"}, p.phases)
	assert.Equal(t, 5, p.steps, "one step per visited section")
}

func TestRun_Cancelled(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": schemaINI}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": targetINI}, "rules.ini")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Run(ctx, schemaDoc, target)

	for _, d := range got {
		assert.Equal(t, diag.UnreachableSection, d.Code)
	}
}

func TestRun_MutualReferencesVisitOnce(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": `
[Sections]
WeaponType
[WeaponType]
Damage=int
Next=WeaponType
[Registries]
Weapons=WeaponType
`}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": `
[Weapons]
0=Laser
[Laser]
Next=Pulse
Damage=x
[Pulse]
Next=Laser
Damage=y
`}, "rules.ini")
	p := &recordingProgress{}
	c := New(context.Background(), schemaDoc, nil, WithProgress(p))
	sink := diag.NewCollector(nil)

	stats := c.Run(context.Background(), target, sink)

	got := sink.Diagnostics()
	require.Equal(t, []diag.Code{diag.IllegalValue, diag.IllegalValue}, codes(got))
	assert.Equal(t, "Pulse", got[0].Section, "Laser descends into Pulse before its own later keys")
	assert.Equal(t, "Laser", got[1].Section)
	assert.Equal(t, Stats{Sections: 3, Visited: 3, Unreachable: 0}, stats)
	assert.Equal(t, 3, p.steps, "each section is visited once")
}

func TestRun_NonFiniteTemplateBound(t *testing.T) {
	schemaDoc := load(t, map[string]string{"schema.ini": `
[Sections]
WeaponType
[WeaponType]
Count=int||string
Stage(0,Count)=int
[Registries]
Weapons=WeaponType
`}, "schema.ini")
	target := load(t, map[string]string{"rules.ini": "[Weapons]\n0=Gun\n1=Cannon\n[Gun]\nCount=NaN\n[Cannon]\nCount=Inf\n"}, "rules.ini")

	var got []diag.Diagnostic
	require.NotPanics(t, func() { got = Run(context.Background(), schemaDoc, target) })
	assert.Equal(t, []diag.Code{diag.DynamicKeyVariableError, diag.DynamicKeyVariableError}, codes(got))
}
