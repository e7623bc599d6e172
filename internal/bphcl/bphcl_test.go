package bphcl

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type ruleID string

func (r ruleID) String() string { return string(r) }

func rng(file string, line, col int) *hcl.Range {
	return &hcl.Range{
		Filename: file,
		Start:    hcl.Pos{Line: line, Column: col, Byte: 0},
		End:      hcl.Pos{Line: line, Column: col + 1, Byte: 1},
	}
}

func TestSort(t *testing.T) {
	diags := hcl.Diagnostics{
		{Summary: "no subject"},
		{Summary: "b 1:1", Subject: rng("b.bp", 1, 1)},
		{Summary: "a 3:1", Subject: rng("a.bp", 3, 1)},
		{Summary: "a 1:5", Subject: rng("a.bp", 1, 5)},
		{Summary: "a 1:2", Subject: rng("a.bp", 1, 2)},
	}

	Sort(diags)

	var got []string
	for _, d := range diags {
		got = append(got, d.Summary)
	}
	assert.Equal(t, []string{"a 1:2", "a 1:5", "a 3:1", "b 1:1", "no subject"}, got)
}

func TestCountBySeverity(t *testing.T) {
	errs, warnings := CountBySeverity(hcl.Diagnostics{
		{Severity: hcl.DiagError},
		{Severity: hcl.DiagWarning},
		{Severity: hcl.DiagWarning},
		{Severity: hcl.DiagInvalid},
	})

	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warnings)
}

func TestFindDuplicates(t *testing.T) {
	// --- Arrange ---
	items := []Named{
		{Name: "head", Range: *rng("a.bp", 2, 3)},
		{Name: "tail", Range: *rng("a.bp", 3, 3)},
		{Name: "head", Range: *rng("a.bp", 4, 3)},
		{Name: "head", Range: *rng("a.bp", 5, 3)},
	}

	// --- Act ---
	diags := FindDuplicates("property", items)

	// --- Assert ---
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, hcl.DiagWarning, d.Severity)
		assert.Equal(t, `Duplicate property "head"`, d.Summary)
		assert.Contains(t, d.Detail, "a.bp:2,3")
	}
	assert.Equal(t, 4, diags[0].Subject.Start.Line)
	assert.Equal(t, 5, diags[1].Subject.Start.Line)

	assert.Empty(t, FindDuplicates("block", nil))
}

func TestDecodeString(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{name: "plain", raw: `"hello"`, expected: "hello"},
		{name: "escapes", raw: `"a\tb\n\"c\""`, expected: "a\tb\n\"c\""},
		{name: "escaped template", raw: `"$${x}"`, expected: "${x}"},
		{name: "interpolation kept verbatim", raw: `"${user.name}"`, expected: "${user.name}", expectErr: true},
		{name: "heredoc", raw: "<<EOT\nhello\nworld\nEOT", expected: "hello\nworld\n"},
		{name: "flush heredoc", raw: "<<-EOT\n    kept\n    EOT", expected: "kept\n"},
		{name: "heredoc interpolation kept verbatim", raw: "<<EOT\n${x}\nEOT", expected: "${x}\n", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, diags := DecodeString([]byte(tc.raw), "a.bp", hcl.InitialPos)

			assert.Equal(t, tc.expectErr, diags.HasErrors(), diags.Error())
			assert.Equal(t, tc.expected, val.AsString())
		})
	}
}

func TestDecodeNumber(t *testing.T) {
	val, diags := DecodeNumber("-1.5", *rng("a.bp", 1, 1))
	require.False(t, diags.HasErrors())
	assert.True(t, val.Equals(cty.NumberFloatVal(-1.5)).True())

	_, diags = DecodeNumber("1.2.3", *rng("a.bp", 1, 1))
	require.True(t, diags.HasErrors())
	assert.Equal(t, "Invalid number literal", diags[0].Summary)
}

func TestKeywordValue(t *testing.T) {
	v, ok := KeywordValue("true")
	assert.True(t, ok)
	assert.Equal(t, cty.True, v)

	v, ok = KeywordValue("null")
	assert.True(t, ok)
	assert.True(t, v.IsNull())

	_, ok = KeywordValue("nil")
	assert.False(t, ok)
}

func TestLiteralText(t *testing.T) {
	testCases := []struct {
		val      cty.Value
		expected string
	}{
		{cty.StringVal("a \"b\"\n"), `"a \"b\"\n"`},
		{cty.NumberIntVal(42), "42"},
		{cty.NumberFloatVal(0.5), "0.5"},
		{cty.False, "false"},
		{cty.NullVal(cty.String), "null"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, LiteralText(tc.val))
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("head"))
	assert.True(t, IsIdentifier("created-at"))
	assert.False(t, IsIdentifier("LinkedList<T>"))
	assert.False(t, IsIdentifier("1st"))
	assert.False(t, IsIdentifier(""))
}

func TestWriteDiagnostics(t *testing.T) {
	src := []byte("Service Auth {\n  name: a\n  name: b\n}\n")
	subject := hcl.Range{
		Filename: "auth.bp",
		Start:    hcl.Pos{Line: 3, Column: 3, Byte: 26},
		End:      hcl.Pos{Line: 3, Column: 7, Byte: 30},
	}
	diags := hcl.Diagnostics{{
		Severity: hcl.DiagWarning,
		Summary:  `Duplicate property "name"`,
		Subject:  &subject,
	}}

	var out bytes.Buffer
	err := WriteDiagnostics(&out, diags, map[string][]byte{"auth.bp": src}, 0, false)

	require.NoError(t, err)
	assert.Contains(t, out.String(), `Warning: Duplicate property "name"`)
	assert.Contains(t, out.String(), "on auth.bp line 3")
	assert.Contains(t, out.String(), "name: b")
}

func TestReport(t *testing.T) {
	// --- Arrange ---
	diags := hcl.Diagnostics{
		{Severity: hcl.DiagError, Summary: "Missing value", Subject: rng("a.bp", 2, 3), Extra: "syntax"},
		{Severity: hcl.DiagWarning, Summary: "Empty block", Detail: "d", Subject: rng("b.bp", 1, 1), Extra: ruleID("empty-block")},
		{Severity: hcl.DiagWarning, Summary: "Loose"},
	}

	// --- Act ---
	report := NewReport(3, diags)
	var out bytes.Buffer
	require.NoError(t, report.WriteJSON(&out))

	// --- Assert ---
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 2, report.Warnings)
	assert.Equal(t, []ReportEntry{
		{Severity: "error", Rule: "syntax", Summary: "Missing value", File: "a.bp", Line: 2, Column: 3},
		{Severity: "warning", Rule: "empty-block", Summary: "Empty block", Detail: "d", File: "b.bp", Line: 1, Column: 1},
		{Severity: "warning", Summary: "Loose"},
	}, report.Diagnostics)

	var decoded Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, *report, decoded)
}

func TestReport_EmptyDiagnosticsIsArray(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReport(0, nil).WriteJSON(&out))
	assert.Contains(t, out.String(), `"diagnostics": []`)
}
