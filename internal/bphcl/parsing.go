package bphcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Named is anything that has a name and a place in the source.
type Named struct {
	Name  string
	Range hcl.Range
}

// FindDuplicates reports every occurrence of a name after its first one.
// The returned diagnostics are warnings: the notation tolerates repeats, but
// they almost always hide a mistake. kind is used in the summary, e.g.
// "property" gives `Duplicate property "head"`.
func FindDuplicates(kind string, items []Named) hcl.Diagnostics {
	var diags hcl.Diagnostics
	first := make(map[string]hcl.Range, len(items))

	for _, item := range items {
		prev, seen := first[item.Name]
		if !seen {
			first[item.Name] = item.Range
			continue
		}
		subject := item.Range
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  fmt.Sprintf("Duplicate %s %q", kind, item.Name),
			Detail:   fmt.Sprintf("A %s named %q was already declared at %s.", kind, item.Name, prev.String()),
			Subject:  &subject,
		})
	}

	return diags
}
