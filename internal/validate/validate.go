package validate

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/model"
)

// RuleID names a validation rule. It is stored in Diagnostic.Extra.
type RuleID string

func (id RuleID) String() string { return string(id) }

// RuleFunc checks a workspace and returns its findings. Rules do not need to
// set Extra; the Validator tags every diagnostic with the rule ID.
type RuleFunc func(ctx context.Context, ws *model.Workspace, opts *Options) hcl.Diagnostics

// Resolver answers whether the file a reference points to exists. from is
// the document that contains the reference.
type Resolver interface {
	Exists(from *model.Document, ref *model.FileReference) bool
}

// Locator is a Resolver that can also name the file a reference points to.
// The reference-cycle rule needs one.
type Locator interface {
	Resolver
	Locate(from *model.Document, ref *model.FileReference) (string, bool)
}

// Options tune a Validator.
type Options struct {
	// Disabled rules are skipped.
	Disabled []RuleID
	// WarningsAsErrors promotes every warning to an error.
	WarningsAsErrors bool
	// BlockTypes, when not empty, is the list of allowed root block types.
	BlockTypes []string
	// Resolver enables the unresolved-reference rule.
	Resolver Resolver
}

type registeredRule struct {
	id RuleID
	fn RuleFunc
}

// Validator holds the registered rules and runs them in registration order.
type Validator struct {
	opts     Options
	rules    []registeredRule
	disabled map[RuleID]bool
}

// New creates a Validator with the built-in rules registered.
func New(opts Options) *Validator {
	v := &Validator{opts: opts, disabled: make(map[RuleID]bool, len(opts.Disabled))}
	for _, id := range opts.Disabled {
		v.disabled[id] = true
	}
	for _, r := range builtinRules() {
		v.Register(r.id, r.fn)
	}
	return v
}

// Register adds a rule. It panics if a rule with the same ID exists.
func (v *Validator) Register(id RuleID, fn RuleFunc) {
	for _, r := range v.rules {
		if r.id == id {
			panic(fmt.Sprintf("validation rule '%s' already registered", id))
		}
	}
	v.rules = append(v.rules, registeredRule{id: id, fn: fn})
}

// Rules lists the registered rule IDs in the order they run.
func (v *Validator) Rules() []RuleID {
	ids := make([]RuleID, 0, len(v.rules))
	for _, r := range v.rules {
		ids = append(ids, r.id)
	}
	return ids
}

// Validate runs every enabled rule over ws. The result is sorted by
// position.
func (v *Validator) Validate(ctx context.Context, ws *model.Workspace) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx)

	var diags hcl.Diagnostics
	for _, r := range v.rules {
		if v.disabled[r.id] {
			logger.Debug("Skipping disabled validation rule.", "rule", r.id)
			continue
		}
		found := r.fn(ctx, ws, &v.opts)
		logger.Debug("Validation rule finished.", "rule", r.id, "findings", len(found))
		for _, d := range found {
			d.Extra = r.id
			if v.opts.WarningsAsErrors && d.Severity == hcl.DiagWarning {
				d.Severity = hcl.DiagError
			}
		}
		diags = append(diags, found...)
	}

	bphcl.Sort(diags)
	return diags
}

// Document validates a single document with the built-in rules and default
// options.
func Document(ctx context.Context, doc *model.Document) hcl.Diagnostics {
	return New(Options{}).Validate(ctx, model.NewWorkspace(doc))
}

// RuleOf returns the rule that produced d, or "" when unknown.
func RuleOf(d *hcl.Diagnostic) RuleID {
	switch extra := d.Extra.(type) {
	case RuleID:
		return extra
	case string:
		return RuleID(extra)
	}
	return ""
}
