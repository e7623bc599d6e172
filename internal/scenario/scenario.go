// Package scenario derives behaviour scenarios from the properties that
// describe them (behaviors, scenarios and their spellings).
package scenario

import (
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/blueprint/internal/model"
)

var scenarioKeys = map[string]bool{
	"behaviors":  true,
	"behaviours": true,
	"behavior":   true,
	"scenarios":  true,
}

// IsScenarioKey reports whether a property with this key carries scenarios.
func IsScenarioKey(key string) bool {
	return scenarioKeys[strings.ToLower(key)]
}

var sentence = regexp.MustCompile(`(?is)^\s*given\s+(.+?),?\s+when\s+(.+?),?\s+then\s+(.+?)\.?\s*$`)

// Attach fills Property.Scenarios for every scenario property in b and in
// the blocks nested below it.
func Attach(b *model.Block) {
	for _, prop := range b.Properties {
		if IsScenarioKey(prop.Key) {
			prop.Scenarios = Derive(prop.Value)
		}
		attachValue(prop.Value)
	}
}

func attachValue(v model.Value) {
	switch t := v.(type) {
	case *model.Block:
		Attach(t)
	case *model.Array:
		for _, item := range t.Items {
			attachValue(item)
		}
	case *model.Call:
		if t.Body != nil {
			Attach(t.Body)
		}
	case *model.Typed:
		attachValue(t.Default)
	}
}

// Derive reads the scenarios out of the value of a scenario property.
func Derive(v model.Value) []*model.Scenario {
	return derive("", "", v)
}

func derive(group, name string, v model.Value) []*model.Scenario {
	switch t := v.(type) {
	case *model.Array:
		var out []*model.Scenario
		for _, item := range t.Items {
			out = append(out, derive(group, "", item)...)
		}
		return out

	case *model.Block:
		if hasSteps(t) {
			return []*model.Scenario{fromBlock(group, name, t)}
		}
		inner := group
		if name != "" {
			inner = joinGroup(group, name)
		}
		var out []*model.Scenario
		for _, prop := range t.Properties {
			out = append(out, derive(inner, prop.Key, prop.Value)...)
		}
		return out

	default:
		text, ok := model.String(v)
		if !ok {
			return nil
		}
		s := FromSentence(text, v.Range())
		s.Group = group
		s.Name = name
		return []*model.Scenario{s}
	}
}

// FromSentence turns one sentence into a scenario. "Given X, when Y, then Z"
// is split into its steps; anything else is kept as free text.
func FromSentence(text string, rng hcl.Range) *model.Scenario {
	s := &model.Scenario{SrcRange: rng}
	m := sentence.FindStringSubmatch(text)
	if m == nil {
		s.Text = strings.TrimSpace(text)
		return s
	}
	s.Given = strings.TrimSpace(m[1])
	s.When = strings.TrimSpace(m[2])
	s.Then = strings.TrimSpace(m[3])
	return s
}

func hasSteps(b *model.Block) bool {
	for _, prop := range b.Properties {
		switch strings.ToLower(prop.Key) {
		case "given", "when", "then":
			return true
		}
	}
	return false
}

func fromBlock(group, name string, b *model.Block) *model.Scenario {
	s := &model.Scenario{Group: group, Name: name, SrcRange: b.SrcRange}
	for _, prop := range b.Properties {
		text := stepText(prop.Value)
		switch strings.ToLower(prop.Key) {
		case "given":
			s.Given = text
		case "when":
			s.When = text
		case "then":
			s.Then = text
		}
	}
	return s
}

// stepText flattens a step value. Lists of conditions are joined with "and".
func stepText(v model.Value) string {
	if text, ok := model.String(v); ok {
		return text
	}
	if arr, ok := v.(*model.Array); ok {
		parts := make([]string, 0, len(arr.Items))
		for _, item := range arr.Items {
			if text, ok := model.String(item); ok {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " and ")
	}
	return ""
}

func joinGroup(group, name string) string {
	if group == "" {
		return name
	}
	return group + "." + name
}
