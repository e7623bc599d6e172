package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/specialistvlad/blueprint/internal/model"
)

// JSON writes ws as indented JSON. Every node is an object tagged with a
// "kind"; properties and array items are JSON arrays so source order is
// kept.
func JSON(w io.Writer, ws *model.Workspace) error {
	docs := make([]cty.Value, 0, len(ws.Documents))
	for _, doc := range ws.Documents {
		docs = append(docs, documentToCty(doc))
	}
	return writeJSON(w, cty.ObjectVal(map[string]cty.Value{
		"documents": tuple(docs),
	}))
}

func writeJSON(w io.Writer, val cty.Value) error {
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("indenting json: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}

func tuple(vals []cty.Value) cty.Value {
	if len(vals) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(vals)
}

func documentToCty(doc *model.Document) cty.Value {
	items := make([]cty.Value, 0, len(doc.Items))
	for _, item := range doc.Items {
		if v, ok := item.(model.Value); ok {
			items = append(items, valueToCty(v))
		}
	}
	return cty.ObjectVal(map[string]cty.Value{
		"path":  cty.StringVal(doc.Path),
		"kind":  cty.StringVal(string(doc.Kind)),
		"items": tuple(items),
	})
}

func valueToCty(v model.Value) cty.Value {
	switch t := v.(type) {
	case *model.Scalar:
		val := t.Val
		if val.IsNull() {
			// A typed null; a dynamic one would be wrapped by the encoder.
			val = cty.NullVal(cty.String)
		}
		return cty.ObjectVal(map[string]cty.Value{
			"kind":  cty.StringVal("scalar"),
			"value": val,
		})
	case *model.Bare:
		return cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("bare"),
			"text": cty.StringVal(t.Text),
		})
	case *model.Array:
		items := make([]cty.Value, 0, len(t.Items))
		for _, item := range t.Items {
			items = append(items, valueToCty(item))
		}
		return cty.ObjectVal(map[string]cty.Value{
			"kind":  cty.StringVal("array"),
			"items": tuple(items),
		})
	case *model.Block:
		return blockToCty(t)
	case *model.Call:
		attrs := map[string]cty.Value{
			"kind":   cty.StringVal("call"),
			"name":   cty.StringVal(t.Name),
			"args":   argsToCty(t.Args),
			"result": cty.StringVal(t.Result),
		}
		if t.Body != nil {
			attrs["body"] = blockToCty(t.Body)
		}
		return cty.ObjectVal(attrs)
	case *model.Typed:
		return cty.ObjectVal(map[string]cty.Value{
			"kind":    cty.StringVal("typed"),
			"type":    cty.StringVal(t.Type),
			"default": valueToCty(t.Default),
		})
	case *model.FileReference:
		return cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("reference"),
			"name": cty.StringVal(t.Name),
			"path": cty.StringVal(t.Path),
		})
	}
	return cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("null")})
}

func blockToCty(b *model.Block) cty.Value {
	props := make([]cty.Value, 0, len(b.Properties))
	for _, p := range b.Properties {
		attrs := map[string]cty.Value{
			"key":   cty.StringVal(p.Key),
			"value": valueToCty(p.Value),
		}
		if len(p.Scenarios) > 0 {
			attrs["scenarios"] = scenariosToCty(p.Scenarios)
		}
		props = append(props, cty.ObjectVal(attrs))
	}
	return cty.ObjectVal(map[string]cty.Value{
		"kind":       cty.StringVal("block"),
		"type":       cty.StringVal(b.Type),
		"identifier": cty.StringVal(b.Identifier),
		"properties": tuple(props),
	})
}

func argsToCty(args []*model.Argument) cty.Value {
	vals := make([]cty.Value, 0, len(args))
	for _, a := range args {
		vals = append(vals, cty.ObjectVal(map[string]cty.Value{
			"name": cty.StringVal(a.Name),
			"expr": cty.StringVal(a.Expr),
		}))
	}
	return tuple(vals)
}

func scenariosToCty(scenarios []*model.Scenario) cty.Value {
	vals := make([]cty.Value, 0, len(scenarios))
	for _, s := range scenarios {
		vals = append(vals, cty.ObjectVal(map[string]cty.Value{
			"group": cty.StringVal(s.Group),
			"name":  cty.StringVal(s.Name),
			"given": cty.StringVal(s.Given),
			"when":  cty.StringVal(s.When),
			"then":  cty.StringVal(s.Then),
			"text":  cty.StringVal(s.Text),
		}))
	}
	return tuple(vals)
}
