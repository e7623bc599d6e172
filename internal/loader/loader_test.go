package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
	"github.com/specialistvlad/blueprint/internal/validate"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLoader_Load(t *testing.T) {
	// --- Arrange ---
	root := writeFiles(t, map[string]string{
		"system.bp":        "System Shop {\n  services: [Auth, Orders]\n}\n",
		"services/auth.bp": "Service Auth {\n  login(user: String) -> Token\n}\n",
		"api/users.bps":    "Users found in `users.go`\nApi Users {\n  list() -> List<User>\n}\n",
		"README.md":        "# Shop\n\n```bp\nNote Readme {}\n```\n",
		"notes.txt":        "not notation",
	})

	testCases := []struct {
		name      string
		opts      Options
		wantPaths []string
		wantKinds []model.DocumentKind
	}{
		{
			name:      "notation only",
			opts:      Options{Workers: 2},
			wantPaths: []string{"api/users.bps", "services/auth.bp", "system.bp"},
			wantKinds: []model.DocumentKind{model.KindSummary, model.KindNotation, model.KindNotation},
		},
		{
			name:      "with markdown",
			opts:      Options{Workers: 4, Markdown: true},
			wantPaths: []string{"README.md", "api/users.bps", "services/auth.bp", "system.bp"},
			wantKinds: []model.DocumentKind{model.KindMarkdown, model.KindSummary, model.KindNotation, model.KindNotation},
		},
		{
			name:      "excluded directory",
			opts:      Options{Exclude: []string{"services"}},
			wantPaths: []string{"api/users.bps", "system.bp"},
			wantKinds: []model.DocumentKind{model.KindSummary, model.KindNotation},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			result, err := New(tc.opts).Load(context.Background(), root)

			// --- Assert ---
			require.NoError(t, err)
			assert.Empty(t, result.Diagnostics)
			var paths []string
			var kinds []model.DocumentKind
			for _, doc := range result.Workspace.Documents {
				rel, err := filepath.Rel(root, doc.Path)
				require.NoError(t, err)
				paths = append(paths, filepath.ToSlash(rel))
				kinds = append(kinds, doc.Kind)
			}
			assert.Equal(t, tc.wantPaths, paths)
			assert.Equal(t, tc.wantKinds, kinds)
		})
	}
}

func TestLoader_SyntaxErrorsDoNotStopOtherFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"good.bp":   "Service Good {\n  name: good\n}\n",
		"broken.bp": "Service Broken {\n  name: broken\n",
	})

	result, err := New(Options{Workers: 2}).Load(context.Background(), root)

	require.NoError(t, err)
	require.Len(t, result.Workspace.Documents, 1)
	assert.Equal(t, "Good", result.Workspace.Blocks()[0].Identifier)
	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, hcl.DiagError, d.Severity)
	assert.Equal(t, parser.RuleSyntax, d.Extra)
	assert.Equal(t, filepath.Join(root, "broken.bp"), d.Subject.Filename)
	assert.Equal(t, 1, d.Subject.Start.Line)
	assert.Contains(t, string(result.Sources[d.Subject.Filename]), "Service Broken", "sources cover files that failed to parse")
	assert.Len(t, result.Sources, 2)
}

func TestLoader_Errors(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.bp": "A a {}\n"})

	_, err := New(Options{}).Load(context.Background(), filepath.Join(root, "missing"))
	assert.ErrorContains(t, err, "failed to find sources")

	_, err = New(Options{}).Load(context.Background(), filepath.Join(root, "*.none"))
	assert.ErrorContains(t, err, "no files match")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{}).Load(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_DiscoverDeduplicates(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.bp": "A a {}\n", "b/c.bp": "C c {}\n"})
	l := New(Options{})

	files, err := l.Discover(context.Background(), root, filepath.Join(root, "a.bp"), filepath.Join(root, "**", "*.bp"))

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.bp"), filepath.Join(root, "b", "c.bp")}, files)
}

func TestParseSource_Markdown(t *testing.T) {
	doc, err := ParseSource([]byte("```blueprint\nA b {}\n```\n"), "doc.md")

	require.NoError(t, err)
	assert.Equal(t, model.KindMarkdown, doc.Kind)
	require.Len(t, doc.Blocks(), 1)
}

func TestFileResolver(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"api/users.go":  "package api",
		"api/users.bps": "Users found in `users.go`\n",
		"shared/db.go":  "package shared",
	})
	from := &model.Document{Path: filepath.Join(root, "api", "users.bps")}
	r := FileResolver{Roots: []string{root}}

	testCases := []struct {
		path string
		want bool
	}{
		{"users.go", true},
		{"shared/db.go", true},
		{filepath.Join(root, "shared", "db.go"), true},
		{"missing.go", false},
		{"shared", false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Exists(from, &model.FileReference{Path: tc.path}))
		})
	}
}

func TestFileResolver_Locate(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"api/users.bps": "Users found in `users.bp`\n",
		"api/users.bp":  "Api Users {\n  x: 1\n}\n",
		"users.bp":      "Api Root {\n  x: 1\n}\n",
	})
	from := &model.Document{Path: filepath.Join(root, "api", "users.bps")}
	var r validate.Locator = FileResolver{Roots: []string{root}}

	// The document's own directory wins over the roots.
	path, ok := r.Locate(from, &model.FileReference{Path: "users.bp"})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "api", "users.bp"), path)

	_, ok = r.Locate(from, &model.FileReference{Path: "nope.bp"})
	assert.False(t, ok)
}
