package validate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/dag"
	"github.com/specialistvlad/blueprint/internal/model"
)

const (
	RuleDuplicateProperty     RuleID = "duplicate-property"
	RuleDuplicateBlock        RuleID = "duplicate-block"
	RuleDuplicateArgument     RuleID = "duplicate-argument"
	RuleEmptyBlock            RuleID = "empty-block"
	RuleIncompleteScenario    RuleID = "incomplete-scenario"
	RuleUnbalancedGeneric     RuleID = "unbalanced-generic"
	RuleUnresolvedReference   RuleID = "unresolved-reference"
	RuleUnknownBlockType      RuleID = "unknown-block-type"
	RuleSummaryImplementation RuleID = "summary-implementation"
	RuleReferenceCycle        RuleID = "reference-cycle"
)

func builtinRules() []registeredRule {
	return []registeredRule{
		{RuleDuplicateProperty, checkDuplicateProperties},
		{RuleDuplicateBlock, checkDuplicateBlocks},
		{RuleDuplicateArgument, checkDuplicateArguments},
		{RuleEmptyBlock, checkEmptyBlocks},
		{RuleIncompleteScenario, checkIncompleteScenarios},
		{RuleUnbalancedGeneric, checkUnbalancedGenerics},
		{RuleUnresolvedReference, checkUnresolvedReferences},
		{RuleUnknownBlockType, checkUnknownBlockTypes},
		{RuleSummaryImplementation, checkSummaryImplementation},
		{RuleReferenceCycle, checkReferenceCycles},
	}
}

// walk calls fn for every value in every document, nested blocks included.
func walk(ws *model.Workspace, fn func(doc *model.Document, v model.Value)) {
	for _, doc := range ws.Documents {
		for _, item := range doc.Items {
			v, ok := item.(model.Value)
			if !ok {
				continue
			}
			model.Walk(v, func(inner model.Value) { fn(doc, inner) })
		}
	}
}

func warning(subject hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject.Ptr(),
	}
}

func checkDuplicateProperties(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	walk(ws, func(_ *model.Document, v model.Value) {
		b, ok := v.(*model.Block)
		if !ok {
			return
		}
		names := make([]bphcl.Named, 0, len(b.Properties))
		for _, p := range b.Properties {
			names = append(names, bphcl.Named{Name: p.Key, Range: p.KeyRange})
		}
		diags = append(diags, bphcl.FindDuplicates("property", names)...)
	})
	return diags
}

func checkDuplicateBlocks(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var names []bphcl.Named
	for _, b := range ws.Blocks() {
		names = append(names, bphcl.Named{Name: b.Type + " " + b.Identifier, Range: b.DefRange})
	}
	return bphcl.FindDuplicates("block", names)
}

func checkDuplicateArguments(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	walk(ws, func(_ *model.Document, v model.Value) {
		c, ok := v.(*model.Call)
		if !ok {
			return
		}
		var names []bphcl.Named
		for _, a := range c.Args {
			name := a.Name
			if name == "" && bphcl.IsIdentifier(a.Expr) {
				name = a.Expr
			}
			if name != "" {
				names = append(names, bphcl.Named{Name: name, Range: c.SrcRange})
			}
		}
		for _, d := range bphcl.FindDuplicates("argument", names) {
			d.Detail = fmt.Sprintf("The signature of %q lists this argument more than once.", c.Name)
			diags = append(diags, d)
		}
	})
	return diags
}

func checkEmptyBlocks(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	walk(ws, func(_ *model.Document, v model.Value) {
		b, ok := v.(*model.Block)
		if !ok || len(b.Properties) > 0 {
			return
		}
		name := "block"
		if !b.IsAnonymous() {
			name = strings.TrimSpace(b.Type + " " + b.Identifier)
		}
		diags = append(diags, warning(b.DefRange, "Empty block", fmt.Sprintf("%q declares no properties.", name)))
	})
	return diags
}

func checkIncompleteScenarios(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	walk(ws, func(_ *model.Document, v model.Value) {
		b, ok := v.(*model.Block)
		if !ok {
			return
		}
		for _, p := range b.Properties {
			for _, s := range p.Scenarios {
				if !s.IsStructured() || s.IsComplete() {
					continue
				}
				name := s.Name
				if name == "" {
					name = p.Key
				}
				diags = append(diags, warning(s.SrcRange, "Incomplete scenario",
					fmt.Sprintf("Scenario %q has no %s step.", name, strings.Join(s.Missing(), " or "))))
			}
		}
	})
	return diags
}

// genericBalance reports whether every "<" in s has a matching ">". Arrows
// such as "->" and "=>" are not brackets.
func genericBalance(s string) bool {
	s = strings.NewReplacer("->", "", "=>", "").Replace(s)
	depth := 0
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func checkUnbalancedGenerics(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	report := func(text string, rng hcl.Range) {
		if !genericBalance(text) {
			diags = append(diags, warning(rng, "Unbalanced generic brackets",
				fmt.Sprintf("The type %q has a \"<\" without a matching \">\" or the reverse.", text)))
		}
	}
	walk(ws, func(_ *model.Document, v model.Value) {
		switch t := v.(type) {
		case *model.Block:
			report(t.Identifier, t.DefRange)
		case *model.Typed:
			report(t.Type, t.SrcRange)
		case *model.Call:
			report(t.Result, t.SrcRange)
			for _, a := range t.Args {
				report(a.Expr, t.SrcRange)
			}
		}
	})
	return diags
}

func checkUnresolvedReferences(_ context.Context, ws *model.Workspace, opts *Options) hcl.Diagnostics {
	if opts.Resolver == nil {
		return nil
	}
	var diags hcl.Diagnostics
	for _, doc := range ws.Documents {
		for _, ref := range doc.References() {
			if opts.Resolver.Exists(doc, ref) {
				continue
			}
			diags = append(diags, warning(ref.SrcRange, "Unresolved file reference",
				fmt.Sprintf("%q refers to %q, which does not exist.", ref.Name, ref.Path)))
		}
	}
	return diags
}

func checkUnknownBlockTypes(_ context.Context, ws *model.Workspace, opts *Options) hcl.Diagnostics {
	if len(opts.BlockTypes) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(opts.BlockTypes))
	for _, t := range opts.BlockTypes {
		allowed[t] = true
	}
	var diags hcl.Diagnostics
	for _, b := range ws.Blocks() {
		if allowed[b.Type] {
			continue
		}
		diags = append(diags, warning(b.DefRange, "Unknown block type",
			fmt.Sprintf("%q is not one of the configured block types: %s.", b.Type, strings.Join(opts.BlockTypes, ", "))))
	}
	return diags
}

func checkSummaryImplementation(_ context.Context, ws *model.Workspace, _ *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, doc := range ws.Documents {
		if doc.Kind != model.KindSummary {
			continue
		}
		walk(model.NewWorkspace(doc), func(_ *model.Document, v model.Value) {
			b, ok := v.(*model.Block)
			if !ok {
				return
			}
			if p := b.Property("implementation"); p != nil {
				diags = append(diags, warning(p.KeyRange, "Implementation in summary file",
					"Summary files describe an API only; move the implementation to a .bp file."))
			}
		})
	}
	return diags
}

// checkReferenceCycles builds the graph of file references between the
// documents of the workspace and reports every cycle once, at the reference
// that closes it. References to files outside the workspace are ignored.
func checkReferenceCycles(_ context.Context, ws *model.Workspace, opts *Options) hcl.Diagnostics {
	locator, ok := opts.Resolver.(Locator)
	if !ok {
		return nil
	}

	type edge struct{ from, to string }

	g := dag.New()
	for _, doc := range ws.Documents {
		g.AddNode(filepath.Clean(doc.Path))
	}
	closing := make(map[edge]*model.FileReference)
	for _, doc := range ws.Documents {
		from := filepath.Clean(doc.Path)
		for _, ref := range doc.References() {
			target, found := locator.Locate(doc, ref)
			if !found {
				continue
			}
			e := edge{from: from, to: filepath.Clean(target)}
			if _, seen := closing[e]; seen || !g.HasNode(e.to) {
				continue
			}
			closing[e] = ref
			if err := g.AddEdge(e.from, e.to); err != nil {
				panic(err)
			}
		}
	}

	var diags hcl.Diagnostics
	for _, cycle := range g.Cycles() {
		ref := closing[edge{from: cycle[len(cycle)-1], to: cycle[0]}]
		chain := strings.Join(append(cycle, cycle[0]), " -> ")
		diags = append(diags, warning(ref.SrcRange, "Circular file reference",
			fmt.Sprintf("%q points back into a cycle of file references: %s.", ref.Name, chain)))
	}
	return diags
}
