package loader

import (
	"os"
	"path/filepath"

	"github.com/specialistvlad/blueprint/internal/model"
)

// FileResolver checks file references against the file system. A relative
// reference path is tried next to the referencing document first and then
// under each of the Roots.
type FileResolver struct {
	Roots []string
}

// Exists reports whether the file ref points to is present.
func (r FileResolver) Exists(from *model.Document, ref *model.FileReference) bool {
	_, ok := r.Locate(from, ref)
	return ok
}

// Locate returns the first candidate path of ref that is a regular file.
func (r FileResolver) Locate(from *model.Document, ref *model.FileReference) (string, bool) {
	for _, candidate := range r.candidates(from, ref.Path) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func (r FileResolver) candidates(from *model.Document, path string) []string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return []string{path}
	}
	var out []string
	if from != nil && from.Path != "" {
		out = append(out, filepath.Join(filepath.Dir(from.Path), path))
	}
	for _, root := range r.Roots {
		out = append(out, filepath.Join(root, path))
	}
	return out
}
