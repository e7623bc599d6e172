package bphcl

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
)

// Report is the machine-readable form of a set of diagnostics.
type Report struct {
	Files       int           `json:"files"`
	Errors      int           `json:"errors"`
	Warnings    int           `json:"warnings"`
	Diagnostics []ReportEntry `json:"diagnostics"`
}

// ReportEntry is one diagnostic. Rule comes from Diagnostic.Extra.
type ReportEntry struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule,omitempty"`
	Summary  string `json:"summary"`
	Detail   string `json:"detail,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// NewReport summarizes diags found in files source files.
func NewReport(files int, diags hcl.Diagnostics) *Report {
	errs, warnings := CountBySeverity(diags)
	r := &Report{
		Files:       files,
		Errors:      errs,
		Warnings:    warnings,
		Diagnostics: make([]ReportEntry, 0, len(diags)),
	}
	for _, d := range diags {
		entry := ReportEntry{
			Severity: severityName(d.Severity),
			Rule:     ruleName(d.Extra),
			Summary:  d.Summary,
			Detail:   d.Detail,
		}
		if d.Subject != nil {
			entry.File = d.Subject.Filename
			entry.Line = d.Subject.Start.Line
			entry.Column = d.Subject.Start.Column
		}
		r.Diagnostics = append(r.Diagnostics, entry)
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func severityName(s hcl.DiagnosticSeverity) string {
	switch s {
	case hcl.DiagError:
		return "error"
	case hcl.DiagWarning:
		return "warning"
	}
	return "invalid"
}

func ruleName(extra any) string {
	switch e := extra.(type) {
	case string:
		return e
	case fmt.Stringer:
		return e.String()
	}
	return ""
}
