package parser

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tNewline
	tComma
	tColon
	tEqual
	tLBrace
	tRBrace
	tLBrack
	tRBrack
	tLParen
	tRParen
	tLAngle
	tRAngle
	tArrow
	tMinus
	tIdent
	tString
	tNumber
	tCode  // a single-line `backtick` span; text holds the content only
	tOther // punctuation with no meaning in the notation, kept for bare text
)

var tokenNames = map[tokenKind]string{
	tEOF:     "end of file",
	tNewline: "newline",
	tComma:   `","`,
	tColon:   `":"`,
	tEqual:   `"="`,
	tLBrace:  `"{"`,
	tRBrace:  `"}"`,
	tLBrack:  `"["`,
	tRBrack:  `"]"`,
	tLParen:  `"("`,
	tRParen:  `")"`,
	tLAngle:  `"<"`,
	tRAngle:  `">"`,
	tArrow:   `"->"`,
	tMinus:   `"-"`,
	tIdent:   "identifier",
	tString:  "string",
	tNumber:  "number",
	tCode:    "code span",
	tOther:   "symbol",
}

func (k tokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// token is one lexical unit of the notation. text is the exact source text,
// except for tCode where it is the content between the backticks.
type token struct {
	kind tokenKind
	text string
	rng  hcl.Range
}

// isSep reports whether the token separates entries.
func (t token) isSep() bool {
	return t.kind == tNewline || t.kind == tComma
}

// isWord reports whether the token is an identifier equal to w.
func (t token) isWord(w string) bool {
	return t.kind == tIdent && t.text == w
}

// adjacent reports whether b starts exactly where a ends.
func adjacent(a, b token) bool {
	return a.rng.End.Byte == b.rng.Start.Byte
}

// span returns the range covering from the start of a to the end of b.
func span(a, b hcl.Range) hcl.Range {
	return hcl.Range{Filename: a.Filename, Start: a.Start, End: b.End}
}
