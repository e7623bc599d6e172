package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertDiagnostic checks that the command output contains a diagnostic with
// the given summary pointing at file and line. It relies on the HCL text
// format ("Warning: <summary>" followed by "on <file> line <n>:"), so tests
// stay independent of the snippet layout.
func AssertDiagnostic(t *testing.T, result *HarnessResult, file string, line int, summary string) {
	t.Helper()

	location := fmt.Sprintf("on %s line %d", result.Path(file), line)
	var header string
	for _, l := range strings.Split(result.Output, "\n") {
		if strings.HasPrefix(l, "Error: ") || strings.HasPrefix(l, "Warning: ") {
			header = l
			continue
		}
		l = strings.TrimSpace(l)
		if !strings.Contains(header, summary) {
			continue
		}
		if l == location+":" || strings.HasPrefix(l, location+", ") {
			return
		}
	}
	require.Failf(t, "diagnostic not found",
		"expected %q at %s:%d in output:\n%s", summary, file, line, result.Output)
}

// AssertNoDiagnostics checks that the run succeeded without findings.
func AssertNoDiagnostics(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.NoError(t, result.Err, "output:\n%s", result.Output)
	require.NotContains(t, result.Output, "Error: ")
	require.NotContains(t, result.Output, "Warning: ")
}
