package bphcl

import (
	"bytes"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// DecodeString evaluates a quoted string literal, including its quotes, or a
// heredoc from its `<<` marker through its closing marker, with HCL string
// semantics (escapes, `$${` and `%%{`). Strings that contain interpolations
// cannot be evaluated without variables; for those the text between the
// delimiters is returned unchanged together with the diagnostics.
func DecodeString(raw []byte, filename string, start hcl.Pos) (cty.Value, hcl.Diagnostics) {
	heredoc := bytes.HasPrefix(raw, []byte("<<"))
	src := raw
	if heredoc && !bytes.HasSuffix(raw, []byte("\n")) {
		// The closing marker only counts when a newline follows it.
		src = append(append(make([]byte, 0, len(raw)+1), raw...), '\n')
	}

	expr, diags := hclsyntax.ParseExpression(src, filename, start)
	if !diags.HasErrors() {
		val, valDiags := expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() && val.IsWhollyKnown() && val.Type() == cty.String {
			return val, diags
		}
	}

	if heredoc {
		return cty.StringVal(string(heredocBody(raw))), diags
	}
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	return cty.StringVal(string(inner)), diags
}

// heredocBody returns the lines between the opening and the closing marker,
// each keeping its newline.
func heredocBody(raw []byte) []byte {
	body := bytes.TrimRight(raw, "\r\n")
	open := bytes.IndexByte(body, '\n')
	last := bytes.LastIndexByte(body, '\n')
	if open < 0 || last <= open {
		return nil
	}
	return body[open+1 : last+1]
}

// DecodeNumber parses a number literal. A leading minus sign is accepted.
func DecodeNumber(raw string, rng hcl.Range) (cty.Value, hcl.Diagnostics) {
	val, err := cty.ParseNumberVal(raw)
	if err != nil {
		return cty.NilVal, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid number literal",
			Detail:   err.Error(),
			Subject:  rng.Ptr(),
		}}
	}
	return val, nil
}

// KeywordValue maps the literal keywords true, false and null to their values.
func KeywordValue(word string) (cty.Value, bool) {
	switch word {
	case "true":
		return cty.True, true
	case "false":
		return cty.False, true
	case "null":
		return cty.NullVal(cty.DynamicPseudoType), true
	}
	return cty.NilVal, false
}

// IsIdentifier reports whether s can be written unquoted as an HCL
// identifier, and therefore as an attribute name or a bare key.
func IsIdentifier(s string) bool {
	return hclsyntax.ValidIdentifier(s)
}
