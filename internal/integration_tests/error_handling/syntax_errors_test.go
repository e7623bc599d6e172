package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/app"
	"github.com/specialistvlad/blueprint/internal/testutil"
)

// TestValidate_SyntaxErrorDoesNotHideOtherFiles checks that a broken file is
// reported with its position while the remaining files are still validated.
func TestValidate_SyntaxErrorDoesNotHideOtherFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"broken.bp": "Service Auth {\n  name:\n}\n",
		"empty.bp":  "Service Empty {\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrFindings)
	testutil.AssertDiagnostic(t, result, "broken.bp", 2, "Missing property value")
	testutil.AssertDiagnostic(t, result, "empty.bp", 1, "Empty block")
	assert.Contains(t, result.Output, "2 files checked: 1 errors, 1 warnings")
}

func TestCommands_RefuseToWorkOnBrokenSources(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"ok.bp":     "Service A {\n  x: 1\n}\n",
		"broken.bp": "Service B {\n  x: [1, 2\n}\n",
	}

	for _, command := range []string{app.CommandParse, app.CommandFmt, app.CommandExport} {
		t.Run(command, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			result := testutil.RunIntegrationTest(t, files, app.Config{Command: command})

			// --- Assert ---
			require.ErrorIs(t, result.Err, app.ErrFindings)
			assert.Contains(t, result.Err.Error(), "1 files with syntax errors")
			assert.Contains(t, result.Output, "Error: ")
			assert.Contains(t, result.Output, result.Path("broken.bp"))
		})
	}
}

func TestValidate_MarkdownSyntaxErrorPointsAtFileLine(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"design.md": "# Design\n\nSome prose.\n\n```bp\nService Auth {\n  name:\n}\n```\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{Markdown: true})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrFindings)
	testutil.AssertDiagnostic(t, result, "design.md", 7, "Missing property value")
}

func TestValidate_JSONReport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"broken.bp": "Service {\n  name: x\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{Format: "json"})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrFindings)
	assert.JSONEq(t, `{
		"files": 1,
		"errors": 1,
		"warnings": 0,
		"diagnostics": [{
			"severity": "error",
			"rule": "syntax",
			"summary": "Missing block identifier",
			"detail": `+detailOf(t, result.Output)+`,
			"file": "`+result.Path("broken.bp")+`",
			"line": 1,
			"column": 1
		}]
	}`, result.Output)
}
