// Package bphcl collects the small helpers that bridge BluePrint notation and
// the HCL toolchain it is built on: literal decoding and rendering, duplicate
// detection and diagnostic output.
package bphcl

import (
	"io"
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// WriteDiagnostics renders diagnostics in the HCL text style, with the
// offending source line and a marker under the subject range. sources maps a
// file name to the bytes the ranges refer to.
func WriteDiagnostics(w io.Writer, diags hcl.Diagnostics, sources map[string][]byte, width uint, color bool) error {
	files := make(map[string]*hcl.File, len(sources))
	for name, src := range sources {
		files[name] = &hcl.File{Bytes: src}
	}
	return hcl.NewDiagnosticTextWriter(w, files, width, color).WriteDiagnostics(diags)
}

// Sort orders diagnostics by file, line and column so output is stable no
// matter in which order rules ran.
func Sort(diags hcl.Diagnostics) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Subject, diags[j].Subject
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Filename != b.Filename:
			return a.Filename < b.Filename
		case a.Start.Line != b.Start.Line:
			return a.Start.Line < b.Start.Line
		default:
			return a.Start.Column < b.Start.Column
		}
	})
}

// CountBySeverity returns the number of errors and warnings.
func CountBySeverity(diags hcl.Diagnostics) (errs, warnings int) {
	for _, d := range diags {
		switch d.Severity {
		case hcl.DiagError:
			errs++
		case hcl.DiagWarning:
			warnings++
		}
	}
	return errs, warnings
}
