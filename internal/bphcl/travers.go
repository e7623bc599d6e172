package bphcl

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// LiteralText renders a literal value the way it would be written in source:
// strings quoted and escaped, numbers in their shortest form, true, false and
// null as keywords.
func LiteralText(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return string(hclwrite.TokensForValue(v).Bytes())
}
