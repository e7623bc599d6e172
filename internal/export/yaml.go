package export

import (
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/model"
)

// YAML writes ws as a YAML stream with one document per source document.
// Block properties become mappings in source order; a block whose keys
// repeat is written as a sequence of key/value pairs instead, since YAML
// mappings cannot hold duplicates.
func YAML(w io.Writer, ws *model.Workspace) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, doc := range ws.Documents {
		if err := enc.Encode(documentNode(doc)); err != nil {
			return fmt.Errorf("encoding yaml for %s: %w", doc.Path, err)
		}
	}
	return enc.Close()
}

func writeYAML(w io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func mapping(pairs ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(pairs); i += 2 {
		var val *yaml.Node
		switch v := pairs[i+1].(type) {
		case string:
			val = str(v)
		case *yaml.Node:
			val = v
		}
		n.Content = append(n.Content, str(pairs[i].(string)), val)
	}
	return n
}

func sequence(items []*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Content: items}
	if len(items) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func documentNode(doc *model.Document) *yaml.Node {
	items := make([]*yaml.Node, 0, len(doc.Items))
	for _, item := range doc.Items {
		if v, ok := item.(model.Value); ok {
			items = append(items, valueNode(v))
		}
	}
	return mapping("path", doc.Path, "kind", string(doc.Kind), "items", sequence(items))
}

func valueNode(v model.Value) *yaml.Node {
	switch t := v.(type) {
	case *model.Scalar:
		return scalarNode(t.Val)
	case *model.Bare:
		return str(t.Text)
	case *model.Array:
		items := make([]*yaml.Node, 0, len(t.Items))
		for _, item := range t.Items {
			items = append(items, valueNode(item))
		}
		return sequence(items)
	case *model.Block:
		if t.IsAnonymous() {
			return propertiesNode(t)
		}
		return mapping("type", t.Type, "identifier", t.Identifier, "properties", propertiesNode(t))
	case *model.Call:
		args := make([]*yaml.Node, 0, len(t.Args))
		for _, a := range t.Args {
			if a.Name == "" {
				args = append(args, str(a.Expr))
				continue
			}
			args = append(args, mapping(a.Name, a.Expr))
		}
		n := mapping("call", t.Name, "args", sequence(args))
		if t.Result != "" {
			n.Content = append(n.Content, str("result"), str(t.Result))
		}
		if t.Body != nil {
			n.Content = append(n.Content, str("body"), propertiesNode(t.Body))
		}
		return n
	case *model.Typed:
		return mapping("type", t.Type, "default", valueNode(t.Default))
	case *model.FileReference:
		return mapping("reference", t.Name, "path", t.Path)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func propertiesNode(b *model.Block) *yaml.Node {
	if hasDuplicateKeys(b) {
		pairs := make([]*yaml.Node, 0, len(b.Properties))
		for _, p := range b.Properties {
			pairs = append(pairs, mapping("key", p.Key, "value", valueNode(p.Value)))
		}
		return sequence(pairs)
	}

	n := &yaml.Node{Kind: yaml.MappingNode}
	if len(b.Properties) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, p := range b.Properties {
		n.Content = append(n.Content, str(p.Key), valueNode(p.Value))
	}
	return n
}

func hasDuplicateKeys(b *model.Block) bool {
	seen := make(map[string]bool, len(b.Properties))
	for _, p := range b.Properties {
		if seen[p.Key] {
			return true
		}
		seen[p.Key] = true
	}
	return false
}

func scalarNode(v cty.Value) *yaml.Node {
	switch {
	case v.IsNull():
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case v.Type() == cty.String:
		return str(v.AsString())
	case v.Type() == cty.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: bphcl.LiteralText(v)}
	case v.Type() == cty.Number:
		tag := "!!float"
		if bf := v.AsBigFloat(); bf.IsInt() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: bphcl.LiteralText(v)}
	}
	return str(bphcl.LiteralText(v))
}
