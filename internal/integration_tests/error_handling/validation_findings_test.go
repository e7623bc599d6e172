package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/app"
	"github.com/specialistvlad/blueprint/internal/testutil"
)

const findings = "Service Auth {\n" +
	"  name: a\n" +
	"  name: b\n" +
	"  behaviors: {\n" +
	"    login: { given: a user, when: they log in }\n" +
	"  }\n" +
	"  upstream: Users found in `users.bp`\n" +
	"}\n" +
	"Service Auth {\n" +
	"}\n"

func TestValidate_WarningsDoNotFailTheRun(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"auth.bp": findings}, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertDiagnostic(t, result, "auth.bp", 3, `Duplicate property "name"`)
	testutil.AssertDiagnostic(t, result, "auth.bp", 5, "Incomplete scenario")
	testutil.AssertDiagnostic(t, result, "auth.bp", 7, "Unresolved file reference")
	testutil.AssertDiagnostic(t, result, "auth.bp", 9, `Duplicate block "Service Auth"`)
	testutil.AssertDiagnostic(t, result, "auth.bp", 9, "Empty block")
	assert.Contains(t, result.Output, "1 files checked: 0 errors, 5 warnings")
}

func TestValidate_StrictTurnsWarningsIntoErrors(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"auth.bp": findings}, app.Config{Strict: true})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrFindings)
	assert.Contains(t, result.Output, "1 files checked: 5 errors, 0 warnings")
}

func TestValidate_DisabledRulesAreSkipped(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"auth.bp": findings}, app.Config{
		Strict:        true,
		DisabledRules: []string{"duplicate-property", "duplicate-block", "empty-block", "incomplete-scenario", "unresolved-reference"},
	})

	// --- Assert ---
	testutil.AssertNoDiagnostics(t, result)
	assert.Contains(t, result.Output, "1 files checked: 0 errors, 0 warnings")
}

func TestValidate_ReferencesResolveAgainstTheDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"services/auth.bp":  "Service Auth {\n  upstream: Users found in `users.bp`\n}\n",
		"services/users.bp": "Service Users {\n  name: users\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	testutil.AssertNoDiagnostics(t, result)
}

func TestValidate_BlockTypesAndSummaryFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"api.bps":  "Api Users {\n  list() -> List<User>\n  implementation: sql query\n}\n",
		"model.bp": "Table Users {\n  id: Int\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{BlockTypes: []string{"Api", "Service"}})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertDiagnostic(t, result, "api.bps", 3, "Implementation in summary file")
	testutil.AssertDiagnostic(t, result, "model.bp", 1, "Unknown block type")
}

func TestValidate_ReferenceCycleBetweenFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"api/users.bps":   "Users found in `../impl/users.bp`\nApi Users {\n  list() -> List<User>\n}\n",
		"impl/users.bp":   "Service Users {\n  api: Users found in `../api/users.bps`\n}\n",
		"impl/billing.bp": "Service Billing {\n  users: Users found in `users.bp`\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertDiagnostic(t, result, "impl/users.bp", 2, "Circular file reference")
	assert.Contains(t, result.Output, "3 files checked: 0 errors, 1 warnings")
}
