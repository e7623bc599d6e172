package parser

import (
	"bytes"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// lex turns src into notation tokens. The heavy lifting is done by the HCL
// scanner; this layer folds its output into the smaller token set the
// notation needs: line comments become separators, quoted templates become a
// single string token, arrows are recognised in their three spellings and
// backtick spans become code tokens.
//
// start is the position of src within its file, so fragments cut out of a
// larger file (Markdown fences) keep their real line numbers.
func lex(src []byte, filename string, start hcl.Pos) ([]token, error) {
	masked := maskInlineHashes(maskBackticks(src))
	raw, _ := hclsyntax.LexConfig(masked, filename, start)

	text := func(r hcl.Range) string {
		return string(src[r.Start.Byte-start.Byte : r.End.Byte-start.Byte])
	}

	toks := make([]token, 0, len(raw))
	emit := func(kind tokenKind, r hcl.Range) {
		toks = append(toks, token{kind: kind, text: text(r), rng: r})
	}

	for i := 0; i < len(raw); i++ {
		t := raw[i]
		var next *hclsyntax.Token
		if i+1 < len(raw) {
			next = &raw[i+1]
		}

		switch t.Type {
		case hclsyntax.TokenEOF:
			emit(tEOF, t.Range)
			return toks, nil

		case hclsyntax.TokenTabs:
			// whitespace

		case hclsyntax.TokenNewline:
			emit(tNewline, t.Range)

		case hclsyntax.TokenComment:
			if bytes.HasPrefix(t.Bytes, []byte("/*")) {
				continue
			}
			// A line comment swallows its newline, so it stands in for it.
			emit(tNewline, t.Range)

		case hclsyntax.TokenBadUTF8:
			return nil, &SyntaxError{
				Summary: "Invalid character encoding",
				Detail:  "The source contains bytes that are not valid UTF-8.",
				Subject: t.Range,
			}

		case hclsyntax.TokenOQuote, hclsyntax.TokenOHeredoc:
			closer := hclsyntax.TokenCQuote
			what := "string"
			if t.Type == hclsyntax.TokenOHeredoc {
				closer = hclsyntax.TokenCHeredoc
				what = "heredoc"
			}
			j := i + 1
			for j < len(raw) && raw[j].Type != closer {
				if raw[j].Type == hclsyntax.TokenEOF ||
					(what == "string" && raw[j].Type == hclsyntax.TokenQuotedNewline) {
					return nil, unterminated(what, t.Range)
				}
				j++
			}
			if j == len(raw) {
				return nil, unterminated(what, t.Range)
			}
			r := span(t.Range, raw[j].Range)
			if what == "string" && strings.Contains(text(r), "\n") {
				return nil, unterminated(what, t.Range)
			}
			emit(tString, r)
			i = j

		case hclsyntax.TokenIdent:
			// `a->b` scans as the identifier "a-" followed by ">".
			if len(t.Bytes) > 1 && t.Bytes[len(t.Bytes)-1] == '-' &&
				next != nil && next.Type == hclsyntax.TokenGreaterThan && next.Range.Start.Byte == t.Range.End.Byte {
				ident := t.Range
				ident.End.Byte--
				ident.End.Column--
				emit(tIdent, ident)
				emit(tArrow, hcl.Range{Filename: filename, Start: ident.End, End: next.Range.End})
				i++
				continue
			}
			emit(tIdent, t.Range)

		case hclsyntax.TokenNumberLit:
			emit(tNumber, t.Range)

		case hclsyntax.TokenMinus:
			if next != nil && next.Type == hclsyntax.TokenGreaterThan && next.Range.Start.Byte == t.Range.End.Byte {
				emit(tArrow, span(t.Range, next.Range))
				i++
				continue
			}
			emit(tMinus, t.Range)

		case hclsyntax.TokenFatArrow:
			emit(tArrow, t.Range)

		case hclsyntax.TokenBacktick:
			if next != nil && next.Type == hclsyntax.TokenBacktick && next.Range.Start.Line == t.Range.Start.Line {
				r := span(t.Range, next.Range)
				body := text(r)
				toks = append(toks, token{kind: tCode, text: body[1 : len(body)-1], rng: r})
				i++
				continue
			}
			emit(tOther, t.Range)

		case hclsyntax.TokenInvalid:
			if text(t.Range) == "→" {
				emit(tArrow, t.Range)
				continue
			}
			emit(tOther, t.Range)

		case hclsyntax.TokenOBrace:
			emit(tLBrace, t.Range)
		case hclsyntax.TokenCBrace:
			emit(tRBrace, t.Range)
		case hclsyntax.TokenOBrack:
			emit(tLBrack, t.Range)
		case hclsyntax.TokenCBrack:
			emit(tRBrack, t.Range)
		case hclsyntax.TokenOParen:
			emit(tLParen, t.Range)
		case hclsyntax.TokenCParen:
			emit(tRParen, t.Range)
		case hclsyntax.TokenLessThan:
			emit(tLAngle, t.Range)
		case hclsyntax.TokenGreaterThan:
			emit(tRAngle, t.Range)
		case hclsyntax.TokenGreaterThanEq:
			// `Node<T>=null` scans as "Node < T >= null".
			if n := len(toks); n > 0 && (toks[n-1].kind == tIdent || toks[n-1].kind == tRAngle) &&
				toks[n-1].rng.End.Byte == t.Range.Start.Byte {
				gt := t.Range
				gt.End = hcl.Pos{Byte: gt.Start.Byte + 1, Line: gt.Start.Line, Column: gt.Start.Column + 1}
				emit(tRAngle, gt)
				emit(tEqual, hcl.Range{Filename: filename, Start: gt.End, End: t.Range.End})
				continue
			}
			emit(tOther, t.Range)
		case hclsyntax.TokenComma:
			emit(tComma, t.Range)
		case hclsyntax.TokenColon:
			emit(tColon, t.Range)
		case hclsyntax.TokenEqual:
			emit(tEqual, t.Range)

		default:
			emit(tOther, t.Range)
		}
	}

	// The HCL scanner always ends with TokenEOF; this is only reached on an
	// empty token stream.
	end := hcl.Range{Filename: filename, Start: start, End: start}
	toks = append(toks, token{kind: tEOF, rng: end})
	return toks, nil
}

func unterminated(what string, r hcl.Range) *SyntaxError {
	return &SyntaxError{
		Summary: "Unterminated " + what,
		Detail:  "The " + what + " starting here has no closing delimiter.",
		Subject: r,
	}
}

// maskBackticks returns a copy of src in which the content of every
// single-line `backtick` span is replaced by spaces of the same byte length.
// Paths such as `docs//api.md` would otherwise start a comment or a string.
func maskBackticks(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	lineStart := 0
	for lineStart <= len(out) {
		end := bytes.IndexByte(out[lineStart:], '\n')
		if end < 0 {
			end = len(out)
		} else {
			end += lineStart
		}

		line := out[lineStart:end]
		for {
			open := bytes.IndexByte(line, '`')
			if open < 0 {
				break
			}
			closeAt := bytes.IndexByte(line[open+1:], '`')
			if closeAt < 0 {
				break
			}
			closeAt += open + 1
			for k := open + 1; k < closeAt; k++ {
				line[k] = ' '
			}
			line = line[closeAt+1:]
		}

		lineStart = end + 1
	}
	return out
}

// maskInlineHashes replaces every "#" that is not the first non-blank byte of
// its line with "?", which the HCL scanner reads as a lone symbol. A "#"
// comment therefore has to start its own line, and `ticket: issue #42` keeps
// its text. src is modified in place.
func maskInlineHashes(src []byte) []byte {
	atStart := true
	for i, c := range src {
		switch c {
		case '\n':
			atStart = true
		case ' ', '\t', '\r':
		case '#':
			if !atStart {
				src[i] = '?'
			}
			atStart = false
		default:
			atStart = false
		}
	}
	return src
}

// HasComments reports whether src contains a line or block comment. Comments
// are not part of the tree, so formatting such a source loses them.
func HasComments(src []byte) bool {
	raw, _ := hclsyntax.LexConfig(maskInlineHashes(maskBackticks(src)), "", hcl.InitialPos)
	for _, t := range raw {
		if t.Type == hclsyntax.TokenComment {
			return true
		}
	}
	return false
}
