// Package parser reads BluePrint notation into the model tree.
//
// The grammar is deliberately permissive: values that are not literals,
// arrays, blocks or call signatures are kept verbatim as bare text, so prose
// like `email is unique per tenant` is a valid value. Only structural
// problems are errors: unbalanced brackets, properties without values and
// root blocks without an identifier.
package parser

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/scenario"
)

// Parse parses one source file. filename is recorded in every range and
// decides the document kind.
func Parse(src []byte, filename string) (*model.Document, error) {
	items, err := ParseFragment(src, filename, hcl.InitialPos)
	if err != nil {
		return nil, err
	}
	return &model.Document{
		Path:   filename,
		Kind:   model.KindFromPath(filename),
		Items:  items,
		Source: src,
	}, nil
}

// ParseString parses notation that does not come from a file.
func ParseString(text string) (*model.Document, error) {
	return Parse([]byte(text), "")
}

// ParseFragment parses src as if it started at start within filename. It is
// used for notation embedded in other files, so ranges point into the
// enclosing file.
func ParseFragment(src []byte, filename string, start hcl.Pos) ([]model.Node, error) {
	toks, err := lex(src, filename, start)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, src: src, base: start.Byte}
	items, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if b, ok := item.(*model.Block); ok {
			scenario.Attach(b)
		}
	}
	return items, nil
}

type parser struct {
	toks []token
	pos  int
	src  []byte
	base int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) skipSeps() {
	for p.peek().isSep() {
		p.pos++
	}
}

func (p *parser) source(r hcl.Range) string {
	return string(p.src[r.Start.Byte-p.base : r.End.Byte-p.base])
}

// rawText returns the source text covered by run, original spacing kept.
func (p *parser) rawText(run []token) string {
	return strings.TrimSpace(p.source(runRange(run)))
}

func runRange(run []token) hcl.Range {
	return span(run[0].rng, run[len(run)-1].rng)
}

func (p *parser) decodeString(t token) cty.Value {
	val, _ := bphcl.DecodeString([]byte(t.text), t.rng.Filename, t.rng.Start)
	return val
}

// identifier turns the tokens between a block type and its "{" into the
// block identifier. A single quoted string is decoded; anything else is
// kept as written, so generic names like LinkedList<T> survive.
func (p *parser) identifier(run []token) string {
	switch {
	case len(run) == 0:
		return ""
	case len(run) == 1 && run[0].kind == tString:
		return p.decodeString(run[0]).AsString()
	default:
		return p.rawText(run)
	}
}

func (p *parser) parseDocument() ([]model.Node, error) {
	var items []model.Node
	for {
		p.skipSeps()
		if p.peek().kind == tEOF {
			return items, nil
		}
		item, err := p.parseTopItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseTopItem() (model.Node, error) {
	t := p.peek()
	switch t.kind {
	case tIdent, tString:
	case tRBrace, tRBrack, tRParen:
		return nil, errorAt(t, "Unexpected closing bracket", "Found %s with no matching opening bracket.", t.kind)
	case tLBrace:
		return nil, errorAt(t, "Missing block type", `A top-level block starts with a type and an identifier, as in "Service Auth {".`)
	default:
		return nil, errorAt(t, "Unexpected "+t.kind.String(), "Expected a block or a file reference at the top level.")
	}

	run, err := p.scanRun()
	if err != nil {
		return nil, err
	}

	brace := p.peek().kind == tLBrace
	if !brace {
		if ref := p.reference(run); ref != nil {
			return ref, nil
		}
		return nil, &SyntaxError{
			Summary: "Missing block body",
			Detail:  fmt.Sprintf(`Expected "{" after %q.`, p.rawText(run)),
			Subject: runRange(run),
		}
	}

	if run[0].kind != tIdent {
		return nil, errorAt(run[0], "Missing block type", `A top-level block starts with a type, found %s.`, describe(run[0]))
	}
	if len(run) == 1 {
		return nil, errorAt(run[0], "Missing block identifier",
			`A top-level %q block needs an identifier, as in "%s Name { ... }".`, run[0].text, run[0].text)
	}
	return p.parseTypedBlock(run)
}

func (p *parser) parseTypedBlock(header []token) (*model.Block, error) {
	b := &model.Block{
		Type:       header[0].text,
		Identifier: p.identifier(header[1:]),
		DefRange:   runRange(header),
	}
	if err := p.parseBody(b); err != nil {
		return nil, err
	}
	b.SrcRange = span(header[0].rng, b.SrcRange)
	return b, nil
}

// parseBody parses "{ entries }" into b. On return b.SrcRange covers the
// braces; callers with a header widen it.
func (p *parser) parseBody(b *model.Block) error {
	open := p.next()
	if b.DefRange == (hcl.Range{}) {
		b.DefRange = open.rng
	}

	for {
		p.skipSeps()
		t := p.peek()
		switch t.kind {
		case tRBrace:
			p.next()
			b.SrcRange = span(open.rng, t.rng)
			return nil
		case tEOF:
			return &SyntaxError{
				Summary: "Unclosed block",
				Detail:  fmt.Sprintf(`The "{" on line %d has no matching "}" before the end of the file.`, open.rng.Start.Line),
				Subject: open.rng,
			}
		case tRBrack, tRParen:
			return errorAt(t, "Unexpected closing bracket",
				`Found %s but the innermost open bracket is the "{" on line %d.`, t.kind, open.rng.Start.Line)
		}

		prop, err := p.parseEntry()
		if err != nil {
			return err
		}
		b.Properties = append(b.Properties, prop)
	}
}

func (p *parser) parseEntry() (*model.Property, error) {
	k := p.peek()

	var key string
	quoted := false
	switch k.kind {
	case tIdent, tNumber:
		key = k.text
	case tString:
		key = p.decodeString(k).AsString()
		quoted = true
	case tColon, tEqual:
		return nil, errorAt(k, "Missing property name", "Expected a property name before %s.", k.kind)
	default:
		return nil, errorAt(k, "Invalid property name", "Expected a property name, found %s.", describe(k))
	}

	n := p.peekAt(1)
	switch {
	case n.kind == tColon || n.kind == tEqual:
		p.next()
		p.next()
		for p.peek().kind == tNewline {
			p.next()
		}
		switch p.peek().kind {
		case tComma, tRBrace, tRBrack, tEOF:
			return nil, missingValue(k, key)
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &model.Property{
			Key:      key,
			Quoted:   quoted,
			Value:    val,
			KeyRange: k.rng,
			SrcRange: span(k.rng, val.Range()),
		}, nil

	case n.kind == tLBrace:
		p.next()
		b := &model.Block{}
		if err := p.parseBody(b); err != nil {
			return nil, err
		}
		return &model.Property{
			Key:      key,
			Quoted:   quoted,
			Value:    b,
			KeyRange: k.rng,
			SrcRange: span(k.rng, b.SrcRange),
		}, nil

	case k.kind == tIdent && !n.isSep() && n.kind != tRBrace && n.kind != tRBrack && n.kind != tEOF:
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch v := val.(type) {
		case *model.Call:
			return &model.Property{Key: v.Name, Shorthand: true, Value: v, KeyRange: k.rng, SrcRange: v.SrcRange}, nil
		case *model.Block:
			name := v.Identifier
			if name == "" {
				name = v.Type
			}
			return &model.Property{Key: name, Shorthand: true, Value: v, KeyRange: k.rng, SrcRange: v.SrcRange}, nil
		}
		return nil, &SyntaxError{
			Summary: "Missing property value",
			Detail:  fmt.Sprintf(`Expected ":" and a value after %q.`, key),
			Subject: k.rng,
		}
	}

	return nil, missingValue(k, key)
}

func missingValue(k token, key string) *SyntaxError {
	return errorAt(k, "Missing property value", "The property %q has no value.", key)
}

func (p *parser) parseValue() (model.Value, error) {
	t := p.peek()
	switch t.kind {
	case tLBrace:
		b := &model.Block{}
		if err := p.parseBody(b); err != nil {
			return nil, err
		}
		return b, nil
	case tLBrack:
		return p.parseArray()
	case tComma, tNewline, tRBrace, tRBrack, tRParen, tEOF:
		return nil, errorAt(t, "Missing value", "Expected a value, found %s.", describe(t))
	}

	run, err := p.scanRun()
	if err != nil {
		return nil, err
	}
	return p.classify(run, p.peek().kind == tLBrace)
}

func (p *parser) parseArray() (*model.Array, error) {
	open := p.next()
	arr := &model.Array{}

	for {
		p.skipSeps()
		t := p.peek()
		switch t.kind {
		case tRBrack:
			p.next()
			arr.SrcRange = span(open.rng, t.rng)
			return arr, nil
		case tEOF:
			return nil, &SyntaxError{
				Summary: "Unclosed array",
				Detail:  fmt.Sprintf(`The "[" on line %d has no matching "]" before the end of the file.`, open.rng.Start.Line),
				Subject: open.rng,
			}
		case tRBrace, tRParen:
			return nil, errorAt(t, "Unexpected closing bracket",
				`Found %s but the innermost open bracket is the "[" on line %d.`, t.kind, open.rng.Start.Line)
		}

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, v)
	}
}

// scanRun collects the tokens of one value. Outside parentheses and square
// brackets the run stops before a separator, a closing bracket or a "{".
// Commas inside a generic argument list such as Map<K, V> do not end it.
func (p *parser) scanRun() ([]token, error) {
	var run, open []token
	angles := 0

	for {
		t := p.peek()
		if len(open) == 0 {
			switch t.kind {
			case tNewline, tRBrace, tRBrack, tLBrace, tEOF:
				return run, nil
			case tComma:
				if angles == 0 {
					return run, nil
				}
			}
		} else {
			switch t.kind {
			case tLBrace, tRBrace, tEOF:
				o := open[len(open)-1]
				return nil, errorAt(o, "Unclosed "+bracketName(o.kind),
					"The %s on line %d has no matching %s.", o.kind, o.rng.Start.Line, closerOf(o.kind))
			}
		}

		switch t.kind {
		case tLParen, tLBrack:
			open = append(open, t)
		case tRParen, tRBrack:
			// A stray ")" outside any bracket is kept as text.
			if len(open) > 0 {
				o := open[len(open)-1]
				if closerOf(o.kind) != t.kind {
					return nil, errorAt(t, "Mismatched bracket",
						"Found %s but the innermost open bracket is the %s on line %d.", t.kind, o.kind, o.rng.Start.Line)
				}
				open = open[:len(open)-1]
			}
		case tLAngle:
			if len(run) > 0 && run[len(run)-1].kind == tIdent && adjacent(run[len(run)-1], t) && closesGeneric(p.toks[p.pos:]) {
				angles++
			}
		case tRAngle:
			if angles > 0 {
				angles--
			}
		}

		run = append(run, t)
		p.pos++
	}
}

func closerOf(k tokenKind) tokenKind {
	switch k {
	case tLParen:
		return tRParen
	case tLBrack:
		return tRBrack
	case tLBrace:
		return tRBrace
	}
	return tEOF
}

func bracketName(k tokenKind) string {
	if k == tLParen {
		return "parenthesis"
	}
	return "bracket"
}

// classify decides what kind of value a run is. brace reports whether the
// run is followed by "{".
func (p *parser) classify(run []token, brace bool) (model.Value, error) {
	if !brace {
		s, err := p.scalar(run)
		if err != nil || s != nil {
			return s, err
		}
		if ref := p.reference(run); ref != nil {
			return ref, nil
		}
	}

	c, err := p.call(run, brace)
	if err != nil || c != nil {
		return c, err
	}

	if e := equalAt(run); e > 0 {
		return p.typed(run, e, brace)
	}
	if !brace {
		return &model.Bare{Text: p.rawText(run), SrcRange: runRange(run)}, nil
	}

	if run[0].kind != tIdent {
		return nil, errorAt(p.peek(), "Unexpected block",
			`A "{" can only follow a block type or a call signature, not %q.`, p.rawText(run))
	}
	return p.parseTypedBlock(run)
}

func (p *parser) scalar(run []token) (model.Value, error) {
	rng := runRange(run)

	var val cty.Value
	switch {
	case len(run) == 1 && run[0].kind == tString:
		val = p.decodeString(run[0])
	case len(run) == 1 && run[0].kind == tNumber:
		v, diags := bphcl.DecodeNumber(run[0].text, rng)
		if diags.HasErrors() {
			return nil, &SyntaxError{Summary: diags[0].Summary, Detail: diags[0].Detail, Subject: rng}
		}
		val = v
	case len(run) == 2 && run[0].kind == tMinus && run[1].kind == tNumber && adjacent(run[0], run[1]):
		v, diags := bphcl.DecodeNumber("-"+run[1].text, rng)
		if diags.HasErrors() {
			return nil, &SyntaxError{Summary: diags[0].Summary, Detail: diags[0].Detail, Subject: rng}
		}
		val = v
	case len(run) == 1 && run[0].kind == tIdent:
		v, ok := bphcl.KeywordValue(run[0].text)
		if !ok {
			return nil, nil
		}
		val = v
	default:
		return nil, nil
	}
	return &model.Scalar{Val: val, SrcRange: rng}, nil
}

// reference recognises `Name found in `path``.
func (p *parser) reference(run []token) *model.FileReference {
	n := len(run)
	if n < 4 || run[n-1].kind != tCode || !run[n-2].isWord("in") || !run[n-3].isWord("found") {
		return nil
	}
	return &model.FileReference{
		Name:     p.identifier(run[:n-3]),
		Path:     strings.TrimSpace(run[n-1].text),
		SrcRange: runRange(run),
	}
}

// call recognises `name(args) [-> Result]`, parsing the body that follows
// when brace is set. It returns nil when the run is not a call.
func (p *parser) call(run []token, brace bool) (*model.Call, error) {
	if len(run) < 3 || run[0].kind != tIdent || run[1].kind != tLParen || !adjacent(run[0], run[1]) {
		return nil, nil
	}
	closeAt := matchParen(run, 1)
	if closeAt < 0 {
		return nil, nil
	}

	c := &model.Call{Name: run[0].text, Args: p.arguments(run[2:closeAt])}
	rest := run[closeAt+1:]
	switch {
	case len(rest) == 0:
	case rest[0].kind == tArrow && len(rest) > 1:
		c.Result = p.rawText(rest[1:])
	case rest[0].kind == tArrow:
		return nil, errorAt(rest[0], "Missing result type", "Expected a result type after %q.", rest[0].text)
	default:
		return nil, nil
	}
	c.SrcRange = runRange(run)

	if brace {
		body := &model.Block{}
		if err := p.parseBody(body); err != nil {
			return nil, err
		}
		c.Body = body
		c.SrcRange = span(c.SrcRange, body.SrcRange)
	}
	return c, nil
}

func matchParen(run []token, open int) int {
	depth := 0
	for i := open; i < len(run); i++ {
		switch run[i].kind {
		case tLParen:
			depth++
		case tRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// arguments splits the tokens between a call's parentheses at top-level
// commas. `name: Type` becomes a named argument.
func (p *parser) arguments(toks []token) []*model.Argument {
	var args []*model.Argument
	flush := func(seg []token) {
		for len(seg) > 0 && seg[0].kind == tNewline {
			seg = seg[1:]
		}
		for len(seg) > 0 && seg[len(seg)-1].kind == tNewline {
			seg = seg[:len(seg)-1]
		}
		if len(seg) == 0 {
			return
		}
		if len(seg) > 2 && seg[0].kind == tIdent && seg[1].kind == tColon {
			args = append(args, &model.Argument{Name: seg[0].text, Expr: p.rawText(seg[2:])})
			return
		}
		args = append(args, &model.Argument{Expr: p.rawText(seg)})
	}

	depth, angles, start := 0, 0, 0
	for i, t := range toks {
		switch t.kind {
		case tLParen, tLBrack:
			depth++
		case tRParen, tRBrack:
			depth--
		case tLAngle:
			if i > 0 && toks[i-1].kind == tIdent && adjacent(toks[i-1], t) && closesGeneric(toks[i:]) {
				angles++
			}
		case tRAngle:
			if angles > 0 {
				angles--
			}
		case tComma:
			if depth == 0 && angles == 0 {
				flush(toks[start:i])
				start = i + 1
			}
		}
	}
	flush(toks[start:])
	return args
}

// closesGeneric reports whether the "<" at toks[0] is matched by a ">" before
// the value can end. `count<10, retries: 3` is a comparison followed by
// another property, `Map<K, V>` is a generic.
func closesGeneric(toks []token) bool {
	depth := 0
	for _, t := range toks {
		switch t.kind {
		case tLAngle:
			depth++
		case tRAngle:
			depth--
			if depth == 0 {
				return true
			}
		case tNewline, tColon, tEqual, tLBrace, tRBrace, tEOF:
			return false
		}
	}
	return false
}

// equalAt returns the index of the first "=" outside brackets, or -1.
func equalAt(run []token) int {
	depth := 0
	for i, t := range run {
		switch t.kind {
		case tLParen, tLBrack:
			depth++
		case tRParen, tRBrack:
			depth--
		case tEqual:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// typed builds `Type = default`. With brace set the default ends in a body,
// either an anonymous `{ ... }` or a block such as `Retry Default { ... }`.
func (p *parser) typed(run []token, eq int, brace bool) (model.Value, error) {
	var (
		def model.Value
		err error
	)
	switch {
	case eq < len(run)-1:
		def, err = p.classify(run[eq+1:], brace)
	case brace:
		body := &model.Block{}
		err = p.parseBody(body)
		def = body
	default:
		return nil, errorAt(run[eq], "Missing default value", `Expected a value after "=".`)
	}
	if err != nil {
		return nil, err
	}
	return &model.Typed{
		Type:     p.rawText(run[:eq]),
		Default:  def,
		SrcRange: span(runRange(run), def.Range()),
	}, nil
}
