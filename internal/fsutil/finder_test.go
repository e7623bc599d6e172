package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFindFiles(t *testing.T) {
	root := writeTree(t,
		"a.bp",
		"api.bps",
		"README.md",
		"notes.txt",
		"services/auth.BP",
		"vendor/lib/x.bp",
		"services/generated/gen.bp",
	)

	testCases := []struct {
		name     string
		opts     FindOptions
		expected []string
	}{
		{
			name:     "notation files",
			opts:     FindOptions{Extensions: []string{".bp", ".bps"}},
			expected: []string{"a.bp", "api.bps", "services/auth.BP", "services/generated/gen.bp", "vendor/lib/x.bp"},
		},
		{
			name: "with excludes",
			opts: FindOptions{
				Extensions: []string{".bp", ".bps"},
				Exclude:    []string{"vendor", "**/generated/**", "*.bps"},
			},
			expected: []string{"a.bp", "services/auth.BP"},
		},
		{
			name:     "markdown",
			opts:     FindOptions{Extensions: []string{".md"}},
			expected: []string{"README.md"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := FindFiles(root, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, rel(t, root, files))
		})
	}
}

func TestFindFiles_SingleFileAndErrors(t *testing.T) {
	root := writeTree(t, "notes.txt")
	file := filepath.Join(root, "notes.txt")

	files, err := FindFiles(file, FindOptions{Extensions: []string{".bp"}})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)

	_, err = FindFiles(filepath.Join(root, "missing"), FindOptions{Extensions: []string{".bp"}})
	assert.Error(t, err)

	_, err = FindFiles(root, FindOptions{Extensions: []string{".bp"}, Exclude: []string{"[unclosed"}})
	assert.ErrorContains(t, err, "invalid exclude pattern")

	assert.Panics(t, func() { _, _ = FindFiles(root, FindOptions{}) })
}

func TestFindFilesByExtension(t *testing.T) {
	root := writeTree(t, "a.bp", "b.hcl")

	files, err := FindFilesByExtension(root, ".bp")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.bp"}, rel(t, root, files))
}

func TestExpandArgs(t *testing.T) {
	root := writeTree(t, "x/a.bp", "x/y/b.bp", "c.md")

	out, err := ExpandArgs([]string{filepath.Join(root, "**", "*.bp"), filepath.Join(root, "c.md"), filepath.Join(root, "x", "a.bp")})
	require.NoError(t, err)
	assert.Equal(t, []string{"x/a.bp", "x/y/b.bp", "c.md"}, rel(t, root, out))

	_, err = ExpandArgs([]string{filepath.Join(root, "*.none")})
	assert.ErrorContains(t, err, "no files match")
}
