package parser

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// SyntaxError is returned when the source does not follow the notation
// grammar. Parsing stops at the first one.
type SyntaxError struct {
	Summary string
	Detail  string
	Subject hcl.Range
}

func (e *SyntaxError) Error() string {
	name := e.Subject.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d,%d: %s; %s", name, e.Subject.Start.Line, e.Subject.Start.Column, e.Summary, e.Detail)
}

// Line is the 1-based line the error points at.
func (e *SyntaxError) Line() int {
	return e.Subject.Start.Line
}

// Diagnostic converts the error for reporting alongside validation findings.
func (e *SyntaxError) Diagnostic() *hcl.Diagnostic {
	subject := e.Subject
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  e.Summary,
		Detail:   e.Detail,
		Subject:  &subject,
		Extra:    RuleSyntax,
	}
}

// RuleSyntax identifies syntax errors among diagnostics.
const RuleSyntax = "syntax"

func errorAt(t token, summary, detail string, args ...any) *SyntaxError {
	return &SyntaxError{Summary: summary, Detail: fmt.Sprintf(detail, args...), Subject: t.rng}
}

func describe(t token) string {
	switch t.kind {
	case tIdent, tNumber, tString:
		return fmt.Sprintf("%s %s", t.kind, t.text)
	}
	return t.kind.String()
}
