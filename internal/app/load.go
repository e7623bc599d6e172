package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/loader"
)

// load reads the configured paths.
func (a *App) load(ctx context.Context) (*loader.Result, error) {
	res, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	return res, nil
}

// loadValid reads the configured paths and fails when any file has a syntax
// error. The errors are printed first.
func (a *App) loadValid(ctx context.Context) (*loader.Result, error) {
	res, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Diagnostics) > 0 {
		if err := a.writeDiagnostics(res, res.Diagnostics); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d files with syntax errors", ErrFindings, len(res.Diagnostics))
	}
	return res, nil
}

// writeDiagnostics prints diags with source snippets.
func (a *App) writeDiagnostics(res *loader.Result, diags hcl.Diagnostics) error {
	if err := bphcl.WriteDiagnostics(a.outW, diags, res.Sources, 0, false); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}
	return nil
}

// check loads and validates the workspace. Syntax errors come first in the
// result's file order, then validation findings, all sorted by position.
func (a *App) check(ctx context.Context) (*loader.Result, hcl.Diagnostics, error) {
	res, err := a.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	diags := append(hcl.Diagnostics{}, res.Diagnostics...)
	diags = append(diags, a.validator.Validate(ctx, res.Workspace)...)
	bphcl.Sort(diags)
	return res, diags, nil
}
