// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Scenario, a behavior attached to a `behaviors` property.
package model

import "github.com/hashicorp/hcl/v2"

// Scenario is either a structured Given/When/Then triple or a free-form
// sentence. Group is the dotted path of grouping keys above the scenario
// (e.g. "insertion" for `behaviors: { insertion: { "empty list": {...} } }`).
type Scenario struct {
	Group string
	Name  string
	Given string
	When  string
	Then  string
	Text  string

	SrcRange hcl.Range
}

// IsStructured reports whether any of the Given/When/Then parts is set.
func (s *Scenario) IsStructured() bool {
	return s.Given != "" || s.When != "" || s.Then != ""
}

// IsComplete reports whether all three parts are present.
func (s *Scenario) IsComplete() bool {
	return s.Given != "" && s.When != "" && s.Then != ""
}

// Missing returns the names of the absent Given/When/Then parts.
func (s *Scenario) Missing() []string {
	var missing []string
	if s.Given == "" {
		missing = append(missing, "given")
	}
	if s.When == "" {
		missing = append(missing, "when")
	}
	if s.Then == "" {
		missing = append(missing, "then")
	}
	return missing
}
