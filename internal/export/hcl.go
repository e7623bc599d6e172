package export

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/printer"
)

// HCL writes ws as HCL native syntax. Root blocks become labelled blocks
// (`Service "Auth" {}`), properties with identifier keys become attributes
// or nested blocks, and any other key is written as
// `property "key" { value = ... }`, as is every repeat of a key already used
// by an attribute. Calls, typed values and references have no HCL
// counterpart and are written as strings in BluePrint notation.
func HCL(w io.Writer, ws *model.Workspace) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, doc := range ws.Documents {
		if i > 0 {
			root.AppendNewline()
		}
		root.AppendUnstructuredTokens(hclwrite.Tokens{
			{Type: hclsyntax.TokenComment, Bytes: []byte("# " + doc.Path + "\n")},
		})
		for _, item := range doc.Items {
			switch t := item.(type) {
			case *model.Block:
				appendBlock(root, t.Type, labels(t.Identifier), t)
			case *model.FileReference:
				ref := root.AppendNewBlock("reference", []string{t.Name}).Body()
				ref.SetAttributeValue("path", cty.StringVal(t.Path))
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing hcl: %w", err)
	}
	return nil
}

func valueHCL(w io.Writer, v model.Value) error {
	f := hclwrite.NewEmptyFile()
	if b, ok := v.(*model.Block); ok && !b.IsAnonymous() {
		appendBlock(f.Body(), b.Type, labels(b.Identifier), b)
	} else {
		f.Body().SetAttributeRaw("value", hclTokens(v))
	}
	_, err := f.WriteTo(w)
	return err
}

func labels(identifier string) []string {
	if identifier == "" {
		return nil
	}
	return []string{identifier}
}

func appendBlock(parent *hclwrite.Body, typeName string, blockLabels []string, b *model.Block) {
	body := parent.AppendNewBlock(typeName, blockLabels).Body()
	appendProperties(body, b)
}

func appendProperties(body *hclwrite.Body, b *model.Block) {
	attrs := make(map[string]bool, len(b.Properties))
	for _, p := range b.Properties {
		switch v := p.Value.(type) {
		case *model.Block:
			switch {
			case !v.IsAnonymous() && p.Shorthand:
				appendBlock(body, v.Type, labels(v.Identifier), v)
			case !v.IsAnonymous():
				appendBlock(body, blockName(p.Key), append(keyLabel(p.Key), append([]string{v.Type}, labels(v.Identifier)...)...), v)
			default:
				appendBlock(body, blockName(p.Key), keyLabel(p.Key), v)
			}
			continue
		case *model.Call:
			if v.Body != nil {
				call := body.AppendNewBlock("call", []string{v.Name}).Body()
				call.SetAttributeValue("signature", cty.StringVal(printer.Value(&model.Call{
					Name: v.Name, Args: v.Args, Result: v.Result,
				})))
				appendProperties(call, v.Body)
				continue
			}
		}

		if bphcl.IsIdentifier(p.Key) && !attrs[p.Key] {
			attrs[p.Key] = true
			body.SetAttributeRaw(p.Key, hclTokens(p.Value))
			continue
		}
		prop := body.AppendNewBlock("property", []string{p.Key}).Body()
		prop.SetAttributeRaw("value", hclTokens(p.Value))
	}
}

// blockName is the block type used for a nested block under key; keys that
// are not identifiers go in a "property" block labelled with the key.
func blockName(key string) string {
	if bphcl.IsIdentifier(key) {
		return key
	}
	return "property"
}

func keyLabel(key string) []string {
	if bphcl.IsIdentifier(key) {
		return nil
	}
	return []string{key}
}

// hclTokens renders v as an HCL expression. Named blocks become
// `{ type, identifier, properties }` objects, mirroring the other formats.
func hclTokens(v model.Value) hclwrite.Tokens {
	switch t := v.(type) {
	case *model.Scalar:
		return hclwrite.TokensForValue(t.Val)
	case *model.Bare:
		return hclwrite.TokensForValue(cty.StringVal(t.Text))
	case *model.Array:
		items := make([]hclwrite.Tokens, 0, len(t.Items))
		for _, item := range t.Items {
			items = append(items, hclTokens(item))
		}
		return hclwrite.TokensForTuple(items)
	case *model.Block:
		if t.IsAnonymous() {
			return propertyTokens(t)
		}
		return objectTokens(
			"type", hclwrite.TokensForValue(cty.StringVal(t.Type)),
			"identifier", hclwrite.TokensForValue(cty.StringVal(t.Identifier)),
			"properties", propertyTokens(t),
		)
	case nil:
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType))
	}
	return hclwrite.TokensForValue(cty.StringVal(printer.Value(v)))
}

// propertyTokens writes the properties of b as an object in source order,
// or as a tuple of `{ key, value }` pairs when a key repeats.
func propertyTokens(b *model.Block) hclwrite.Tokens {
	if hasDuplicateKeys(b) {
		pairs := make([]hclwrite.Tokens, 0, len(b.Properties))
		for _, p := range b.Properties {
			pairs = append(pairs, objectTokens(
				"key", hclwrite.TokensForValue(cty.StringVal(p.Key)),
				"value", hclTokens(p.Value),
			))
		}
		return hclwrite.TokensForTuple(pairs)
	}

	attrs := make([]hclwrite.ObjectAttrTokens, 0, len(b.Properties))
	for _, p := range b.Properties {
		attrs = append(attrs, hclwrite.ObjectAttrTokens{Name: objectKey(p.Key), Value: hclTokens(p.Value)})
	}
	return hclwrite.TokensForObject(attrs)
}

// objectTokens builds an object from alternating keys and values.
func objectTokens(pairs ...any) hclwrite.Tokens {
	attrs := make([]hclwrite.ObjectAttrTokens, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs = append(attrs, hclwrite.ObjectAttrTokens{
			Name:  objectKey(pairs[i].(string)),
			Value: pairs[i+1].(hclwrite.Tokens),
		})
	}
	return hclwrite.TokensForObject(attrs)
}

// objectKey writes key bare when it is an identifier. Keywords are quoted,
// as a bare `null` or `for` would not read back as a key.
func objectKey(key string) hclwrite.Tokens {
	switch key {
	case "true", "false", "null", "for", "if":
		return hclwrite.TokensForValue(cty.StringVal(key))
	}
	if bphcl.IsIdentifier(key) {
		return hclwrite.TokensForIdentifier(key)
	}
	return hclwrite.TokensForValue(cty.StringVal(key))
}
