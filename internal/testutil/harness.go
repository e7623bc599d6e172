package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Dir is the temporary directory the files were written to.
	Dir       string
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Path returns the absolute path of a file given to the harness.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(name))
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg)
}

// RunIntegrationTestWithContext writes files to a temporary directory and
// runs one command over it. Relative cfg.Paths are resolved against that
// directory; without paths the whole directory is used. Unset logging and
// worker fields get test defaults and Command defaults to validate.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()

	// 2. Write all files. The test provides relative paths (e.g. "api/users.bps"),
	//    which naturally creates the subdirectory structure.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	// 3. Point the configuration at the temporary directory.
	if cfg.Command == "" {
		cfg.Command = app.CommandValidate
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{tmpDir}
	} else {
		paths := make([]string, len(cfg.Paths))
		for i, p := range cfg.Paths {
			if filepath.IsAbs(p) {
				paths[i] = p
			} else {
				paths[i] = filepath.Join(tmpDir, filepath.FromSlash(p))
			}
		}
		cfg.Paths = paths
	}
	if cfg.OutputPath != "" && !filepath.IsAbs(cfg.OutputPath) {
		cfg.OutputPath = filepath.Join(tmpDir, cfg.OutputPath)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}

	result := &HarnessResult{Dir: tmpDir}
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}

	out, logBuffer := &SafeBuffer{}, &SafeBuffer{}
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("BLUEPRINT_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		result.App = app.NewApp(ctx, out, logBuffer, appConfig)
	}()

	if panicErr != nil {
		result.LogOutput = logBuffer.String()
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
		return result
	}
	t.Cleanup(func() { _ = result.App.Close() })

	result.Err = result.App.Run(ctx)

	if os.Getenv("BLUEPRINT_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result.Output = out.String()
	result.LogOutput = logBuffer.String()
	return result
}
