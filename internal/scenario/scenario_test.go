package scenario_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
	"github.com/specialistvlad/blueprint/internal/scenario"
)

func TestFromSentence(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want model.Scenario
	}{
		{
			name: "full sentence",
			text: "Given an empty cart, when an item is added, then the total is its price.",
			want: model.Scenario{Given: "an empty cart", When: "an item is added", Then: "the total is its price"},
		},
		{
			name: "case insensitive without commas",
			text: "GIVEN a user WHEN they log out THEN the session ends",
			want: model.Scenario{Given: "a user", When: "they log out", Then: "the session ends"},
		},
		{
			name: "free text",
			text: "  Rejects expired tokens ",
			want: model.Scenario{Text: "Rejects expired tokens"},
		},
		{
			name: "missing then is free text",
			text: "Given a user, when they log out",
			want: model.Scenario{Text: "Given a user, when they log out"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := scenario.FromSentence(tc.text, hcl.Range{})
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestIsScenarioKey(t *testing.T) {
	for _, key := range []string{"behaviors", "Behaviours", "behavior", "SCENARIOS"} {
		assert.True(t, scenario.IsScenarioKey(key), key)
	}
	assert.False(t, scenario.IsScenarioKey("properties"))
}

func TestAttach_StructuredAndGrouped(t *testing.T) {
	// Arrange
	src := `
Service Cart {
  behaviors: {
    checkout: {
      happy_path: {
        given: a cart with items
        when: the user pays
        then: [an order is created, the cart is emptied]
      }
      declined: {
        given: a cart with items
        when: the card is declined
      }
    }
    "adds items": "Given an empty cart, when an item is added, then it is listed"
  }
  methods: {
    add(item: Item) {
      scenarios: [Duplicate items increase the quantity]
    }
  }
}`

	// Act
	doc, err := parser.ParseString(src)
	require.NoError(t, err)

	// Assert
	cart := doc.Blocks()[0]
	scenarios := cart.Property("behaviors").Scenarios
	require.Len(t, scenarios, 3)

	assert.Equal(t, "checkout", scenarios[0].Group)
	assert.Equal(t, "happy_path", scenarios[0].Name)
	assert.Equal(t, "an order is created and the cart is emptied", scenarios[0].Then)
	assert.True(t, scenarios[0].IsComplete())

	assert.Equal(t, "declined", scenarios[1].Name)
	assert.True(t, scenarios[1].IsStructured())
	assert.Equal(t, []string{"then"}, scenarios[1].Missing())

	assert.Equal(t, "", scenarios[2].Group)
	assert.Equal(t, "adds items", scenarios[2].Name)
	assert.Equal(t, "an empty cart", scenarios[2].Given)

	add := cart.Property("methods").Value.(*model.Block).Property("add").Value.(*model.Call)
	nested := add.Body.Property("scenarios").Scenarios
	require.Len(t, nested, 1)
	assert.Equal(t, "Duplicate items increase the quantity", nested[0].Text)
	assert.False(t, nested[0].IsStructured())
}

func TestDerive_SingleStructuredBlock(t *testing.T) {
	doc, err := parser.ParseString(`Flow Login { behavior: { given: a user, when: they sign in, then: welcome } }`)
	require.NoError(t, err)

	got := doc.Blocks()[0].Property("behavior").Scenarios
	require.Len(t, got, 1)
	assert.Equal(t, "a user", got[0].Given)
	assert.Equal(t, "they sign in", got[0].When)
	assert.Equal(t, "welcome", got[0].Then)
	assert.Empty(t, got[0].Name)
}
