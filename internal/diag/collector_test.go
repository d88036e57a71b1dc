package diag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		in        string
		expected  Severity
		expectErr bool
	}{
		{in: "info", expected: SeverityInfo},
		{in: "WARN", expected: SeverityWarning},
		{in: "warning", expected: SeverityWarning},
		{in: " error ", expected: SeverityError},
		{in: "off", expected: SeverityOff},
		{in: "loud", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			s, err := ParseSeverity(tc.in)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestCollector_AppliesPolicy(t *testing.T) {
	policy, err := ParsePolicy(map[string]string{
		"KeyNotExist":        "warning",
		"UnreachableSection": "off",
	})
	require.NoError(t, err)

	c := NewCollector(policy)
	c.Report(New(KeyNotExist, "Foo"))
	c.Report(New(UnreachableSection, "Bar"))
	c.Report(New(IllegalInt, "1x"))

	diags := c.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, KeyNotExist, diags[0].Code)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, IllegalInt, diags[1].Code)
	assert.Equal(t, SeverityError, diags[1].Severity)
}

func TestParsePolicy_RejectsUnknownCode(t *testing.T) {
	_, err := ParsePolicy(map[string]string{"NoSuchCode": "info"})
	require.Error(t, err)
}

func TestCollector_ConcurrentReports(t *testing.T) {
	c := NewCollector(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Report(New(EmptyValue, "k"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestSortAndMax(t *testing.T) {
	diags := []Diagnostic{
		New(IllegalInt).At("b.ini", 1, 7),
		New(KeyNotExist).At("a.ini", 0, 9),
		New(UnusedGlobal),
		New(OverRange).At("a.ini", 0, 2),
	}
	Sort(diags)

	assert.Equal(t, UnusedGlobal, diags[0].Code)
	assert.Equal(t, OverRange, diags[1].Code)
	assert.Equal(t, KeyNotExist, diags[2].Code)
	assert.Equal(t, IllegalInt, diags[3].Code)
	assert.Equal(t, SeverityError, Max(diags))
	assert.Equal(t, SeverityOff, Max(nil))
	assert.Equal(t, 2, Counts(diags)[SeverityError])
}

func TestSortByPath(t *testing.T) {
	at := func(code Code, path string, index, line int) Diagnostic {
		return New(code).AtPos(Position{Path: path, File: path[len(path)-5:], FileIndex: index, Line: line})
	}
	diags := []Diagnostic{
		at(KeyNotExist, "/t/a.ini", 0, 1),
		at(TypeNotExist, "/s/s.ini", 0, 9),
		at(EmptyValue, "/x/z.ini", 0, 1),
		at(OverRange, "/x/y.ini", 0, 4),
		New(UnusedGlobal),
	}
	Sort(diags, "/s/s.ini", "/t/a.ini")

	var got []Code
	for _, d := range diags {
		got = append(got, d.Code)
	}
	assert.Equal(t, []Code{UnusedGlobal, TypeNotExist, KeyNotExist, OverRange, EmptyValue}, got,
		"listed files keep their order and unlisted files follow by path")
	assert.Equal(t, "/s/s.ini", diags[1].Path)
	assert.Equal(t, "s.ini", diags[1].File)
}
