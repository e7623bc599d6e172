package integration_tests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// detailOf returns the JSON encoding of the first diagnostic detail in a
// report, so tests can pin everything else exactly.
func detailOf(t *testing.T, report string) string {
	t.Helper()
	var parsed struct {
		Diagnostics []struct {
			Detail string `json:"detail"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(report), &parsed), report)
	require.NotEmpty(t, parsed.Diagnostics, report)
	encoded, err := json.Marshal(parsed.Diagnostics[0].Detail)
	require.NoError(t, err)
	return string(encoded)
}
