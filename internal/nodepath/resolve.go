package nodepath

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/blueprint/internal/model"
)

// ErrNotFound is returned when a path does not lead to a node.
var ErrNotFound = errors.New("node not found")

// Resolve finds the value addr points to in doc. The first segment matches a
// root block by identifier, or by type when no identifier matches, or a
// root file reference by name.
func Resolve(doc *model.Document, addr *Address) (model.Value, error) {
	if addr == nil || len(addr.Path) == 0 {
		return nil, fmt.Errorf("empty path: %w", ErrNotFound)
	}

	cur := findRoot(doc, addr.Path[0].Name)
	if cur == nil {
		return nil, fmt.Errorf("no root block %q in %s: %w", addr.Path[0].Name, doc.Path, ErrNotFound)
	}

	seen := &Address{}
	for i, seg := range addr.Path {
		var err error
		if i > 0 && seg.Name != "" {
			if cur, err = property(cur, seg.Name, seen); err != nil {
				return nil, err
			}
		}
		seen = seen.Child(NewPathSegment(seg.Name))
		if seg.HasIndex() {
			if cur, err = index(cur, seg.Index, seen); err != nil {
				return nil, err
			}
			seen.Path[len(seen.Path)-1].Index = seg.Index
		}
	}
	return cur, nil
}

// ResolveWorkspace resolves addr in every document of ws and returns the
// first match.
func ResolveWorkspace(ws *model.Workspace, addr *Address) (*model.Document, model.Value, error) {
	var lastErr error = fmt.Errorf("empty workspace: %w", ErrNotFound)
	for _, doc := range ws.Documents {
		v, err := Resolve(doc, addr)
		if err == nil {
			return doc, v, nil
		}
		lastErr = err
	}
	if len(ws.Documents) > 1 {
		return nil, nil, fmt.Errorf("%s: %w", addr, ErrNotFound)
	}
	return nil, nil, lastErr
}

func findRoot(doc *model.Document, name string) model.Value {
	var byType model.Value
	for _, item := range doc.Items {
		switch t := item.(type) {
		case *model.Block:
			if t.Identifier == name {
				return t
			}
			if byType == nil && t.Type == name {
				byType = t
			}
		case *model.FileReference:
			if t.Name == name {
				return t
			}
		}
	}
	return byType
}

func property(cur model.Value, key string, at *Address) (model.Value, error) {
	var b *model.Block
	switch t := cur.(type) {
	case *model.Block:
		b = t
	case *model.Call:
		b = t.Body
	case *model.Typed:
		if key == "default" {
			return t.Default, nil
		}
	}
	if b == nil {
		return nil, fmt.Errorf("%s has no properties: %w", at, ErrNotFound)
	}

	p := b.Property(key)
	if p == nil {
		return nil, fmt.Errorf("no property %q in %s: %w", key, at, ErrNotFound)
	}
	return p.Value, nil
}

func index(cur model.Value, i int, at *Address) (model.Value, error) {
	arr, ok := cur.(*model.Array)
	if !ok {
		return nil, fmt.Errorf("%s is not an array: %w", at, ErrNotFound)
	}
	if i >= len(arr.Items) {
		return nil, fmt.Errorf("index %d out of range for %s with %d items: %w", i, at, len(arr.Items), ErrNotFound)
	}
	return arr.Items[i], nil
}
