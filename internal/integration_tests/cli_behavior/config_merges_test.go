package integration_tests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/cli"
)

// TestCLI_MergesProjectFileEnvironmentAndFlags checks the precedence of the
// three configuration layers: flags over environment over blueprint.yaml.
func TestCLI_MergesProjectFileEnvironmentAndFlags(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	configPath := filepath.Join(dir, "blueprint.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
paths: [design]
workers: 2
log:
  level: warn
  format: json
validation:
  disabled: [empty-block]
watch:
  debounce: 1s
`), 0o644))

	t.Setenv("BLUEPRINT_WORKERS", "6")
	t.Setenv("BLUEPRINT_LOG_LEVEL", "error")
	t.Setenv("BLUEPRINT_VALIDATION_STRICT", "true")

	// --- Act ---
	cfg, shouldExit, err := cli.Parse([]string{
		"watch",
		"--config", configPath,
		"--log-level=debug",
		"--debounce=50ms",
	}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)

	// From the file, with the path made relative to it.
	assert.Equal(t, []string{filepath.Join(dir, "design")}, cfg.Paths)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"empty-block"}, cfg.DisabledRules)
	// The environment beats the file.
	assert.Equal(t, 6, cfg.WorkerCount)
	assert.True(t, cfg.Strict)
	// Flags beat both.
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
}

func TestCLI_PathArgumentsReplaceProjectPaths(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	configPath := filepath.Join(dir, "blueprint.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("paths: [design]\n"), 0o644))

	// --- Act ---
	cfg, _, err := cli.Parse([]string{"parse", "--config", configPath, "other.bp"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"other.bp"}, cfg.Paths)
}

func TestCLI_InvalidProjectFileIsAUsageError(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "colour: red\n"},
		{name: "bad log level", content: "log:\n  level: loud\n"},
		{name: "not yaml", content: "paths: [unclosed\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			configPath := filepath.Join(t.TempDir(), "blueprint.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tc.content), 0o644))

			// --- Act ---
			_, _, err := cli.Parse([]string{"validate", "--config", configPath}, &bytes.Buffer{})

			// --- Assert ---
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, cli.ExitUsage, exitErr.Code)
		})
	}
}

func TestCLI_MissingExplicitProjectFile(t *testing.T) {
	_, _, err := cli.Parse([]string{"validate", "--config", filepath.Join(t.TempDir(), "nope.yaml")}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}
