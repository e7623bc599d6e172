// Package printer writes model trees back out as canonical BluePrint
// notation: two-space indentation, one entry per line, no trailing commas,
// strings quoted with HCL escaping and bare text as written. Parsing the
// output gives back an equivalent tree.
package printer

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
)

const indentUnit = "  "

// inlineArrayWidth is the longest array that is kept on one line.
const inlineArrayWidth = 80

var (
	rawIdentifier = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_\-.]*(<[\p{L}\p{N}_\-., <>\[\]]*>)?$`)
	rawNumberKey  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// Fprint writes doc to w.
func Fprint(w io.Writer, doc *model.Document) error {
	_, err := w.Write(Format(doc))
	return err
}

// Format returns the canonical text of doc.
func Format(doc *model.Document) []byte {
	p := &printer{}
	for i, item := range doc.Items {
		if i > 0 {
			p.buf.WriteByte('\n')
		}
		switch t := item.(type) {
		case *model.Block:
			p.block(t)
		case *model.FileReference:
			p.reference(t)
		}
		p.buf.WriteByte('\n')
	}
	return p.buf.Bytes()
}

// FormatSource parses src and returns its canonical text.
func FormatSource(src []byte, filename string) ([]byte, error) {
	doc, err := parser.Parse(src, filename)
	if err != nil {
		return nil, err
	}
	return Format(doc), nil
}

// Value returns the canonical text of a single value at indentation zero.
func Value(v model.Value) string {
	p := &printer{}
	p.value(v)
	return p.buf.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) indent() {
	for i := 0; i < p.depth; i++ {
		p.buf.WriteString(indentUnit)
	}
}

func (p *printer) block(b *model.Block) {
	if b.Type != "" {
		p.buf.WriteString(b.Type)
		p.buf.WriteByte(' ')
		if b.Identifier != "" {
			p.buf.WriteString(identifier(b.Identifier))
			p.buf.WriteByte(' ')
		}
	}
	p.body(b)
}

func (p *printer) body(b *model.Block) {
	if len(b.Properties) == 0 {
		p.buf.WriteString("{}")
		return
	}
	p.buf.WriteString("{\n")
	p.depth++
	for _, prop := range b.Properties {
		p.indent()
		p.property(prop)
		p.buf.WriteByte('\n')
	}
	p.depth--
	p.indent()
	p.buf.WriteByte('}')
}

func (p *printer) property(prop *model.Property) {
	if prop.Shorthand {
		switch v := prop.Value.(type) {
		case *model.Call:
			p.call(v)
			return
		case *model.Block:
			if v.Type != "" && v.Identifier != "" {
				p.block(v)
				return
			}
		}
	}
	p.buf.WriteString(key(prop))
	p.buf.WriteString(": ")
	p.value(prop.Value)
}

func (p *printer) value(v model.Value) {
	switch t := v.(type) {
	case *model.Scalar:
		p.buf.WriteString(bphcl.LiteralText(t.Val))
	case *model.Bare:
		p.buf.WriteString(t.Text)
	case *model.Array:
		p.array(t)
	case *model.Block:
		p.block(t)
	case *model.Call:
		p.call(t)
	case *model.Typed:
		p.buf.WriteString(t.Type)
		p.buf.WriteString(" = ")
		p.value(t.Default)
	case *model.FileReference:
		p.reference(t)
	case nil:
		p.buf.WriteString("null")
	default:
		panic(fmt.Sprintf("printer: unexpected value type %T", v))
	}
}

func (p *printer) array(a *model.Array) {
	if len(a.Items) == 0 {
		p.buf.WriteString("[]")
		return
	}

	if inline, ok := inlineItems(a.Items); ok {
		p.buf.WriteByte('[')
		p.buf.WriteString(strings.Join(inline, ", "))
		p.buf.WriteByte(']')
		return
	}

	p.buf.WriteString("[\n")
	p.depth++
	for _, item := range a.Items {
		p.indent()
		p.value(item)
		p.buf.WriteByte('\n')
	}
	p.depth--
	p.indent()
	p.buf.WriteByte(']')
}

// inlineItems renders the items of a short array of simple values. It
// reports false when the array should be printed one item per line.
func inlineItems(items []model.Value) ([]string, bool) {
	out := make([]string, 0, len(items))
	width := 2
	for _, item := range items {
		switch t := item.(type) {
		case *model.Block, *model.Array:
			return nil, false
		case *model.Call:
			if t.Body != nil {
				return nil, false
			}
		}
		text := Value(item)
		if strings.Contains(text, "\n") {
			return nil, false
		}
		width += len(text) + 2
		if width > inlineArrayWidth {
			return nil, false
		}
		out = append(out, text)
	}
	return out, true
}

func (p *printer) call(c *model.Call) {
	p.buf.WriteString(c.Name)
	p.buf.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		if a.Name != "" {
			p.buf.WriteString(a.Name)
			p.buf.WriteString(": ")
		}
		p.buf.WriteString(a.Expr)
	}
	p.buf.WriteByte(')')
	if c.Result != "" {
		p.buf.WriteString(" -> ")
		p.buf.WriteString(c.Result)
	}
	if c.Body != nil {
		p.buf.WriteByte(' ')
		p.body(c.Body)
	}
}

func (p *printer) reference(r *model.FileReference) {
	fmt.Fprintf(&p.buf, "%s found in `%s`", r.Name, r.Path)
}

func identifier(id string) string {
	if rawIdentifier.MatchString(id) {
		return id
	}
	return bphcl.LiteralText(cty.StringVal(id))
}

func key(prop *model.Property) string {
	if !prop.Quoted && (bphcl.IsIdentifier(prop.Key) || rawNumberKey.MatchString(prop.Key)) {
		return prop.Key
	}
	return bphcl.LiteralText(cty.StringVal(prop.Key))
}
