package integration_tests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/app"
	"github.com/specialistvlad/blueprint/internal/testutil"
)

func TestParse_SelectPrintsOneNode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "typed property", path: "LinkedList<T>.properties.head", expected: "Node<T> = null\n"},
		{name: "number", path: "LinkedList<T>.properties.size", expected: "0\n"},
		{name: "call", path: "LinkedList<T>.push", expected: "push(value: T) -> Void\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			result := testutil.RunIntegrationTest(t, map[string]string{"list.bp": linkedList}, app.Config{
				Command: app.CommandParse,
				Select:  tc.path,
			})

			// --- Assert ---
			require.NoError(t, result.Err)
			assert.Equal(t, tc.expected, result.Output)
		})
	}
}

func TestParse_SelectWithFormat(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"list.bp": linkedList}, app.Config{
		Command: app.CommandParse,
		Select:  "LinkedList<T>.properties",
		Format:  "json",
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Output), &out), result.Output)
	assert.Equal(t, "block", out["kind"])
}

func TestParse_SelectErrors(t *testing.T) {
	t.Parallel()

	// --- Act ---
	missing := testutil.RunIntegrationTest(t, map[string]string{"list.bp": linkedList}, app.Config{
		Command: app.CommandParse,
		Select:  "LinkedList<T>.nope",
	})
	invalid := testutil.RunIntegrationTest(t, map[string]string{"list.bp": linkedList}, app.Config{
		Command: app.CommandParse,
		Select:  "",
	})

	// --- Assert ---
	require.ErrorIs(t, missing.Err, app.ErrFindings)
	require.NoError(t, invalid.Err, "an empty selection prints the outline")
	assert.Contains(t, invalid.Output, "DataStructure LinkedList<T>")
}
