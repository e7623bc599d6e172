package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
)

const sample = `
DataStructure LinkedList<T> {
  properties: {
    head: Node<T> = null
    size: 0
  }
  push(value: T) -> Void
  "x-trace": on
  tags: [a, "b", 3.5, true]
  find(q: Query) -> Node<T> {
    complexity: linear
  }
  behaviors: ["Given an empty list, when push is called, then size is 1"]
}
Helpers found in ` + "`helpers.bp`" + `
`

func sampleWorkspace(t *testing.T) *model.Workspace {
	t.Helper()
	doc, err := parser.Parse([]byte(sample), "list.bp")
	require.NoError(t, err)
	return model.NewWorkspace(doc)
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "json", want: FormatJSON},
		{input: "YAML", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "hcl", want: FormatHCL},
		{input: "xml", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSON(t *testing.T) {
	// Arrange
	ws := sampleWorkspace(t)
	var buf bytes.Buffer

	// Act
	require.NoError(t, JSON(&buf, ws))

	// Assert
	var out struct {
		Documents []struct {
			Path  string `json:"path"`
			Kind  string `json:"kind"`
			Items []struct {
				Kind       string `json:"kind"`
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
				Name       string `json:"name"`
				Path       string `json:"path"`
				Properties []struct {
					Key       string           `json:"key"`
					Value     map[string]any   `json:"value"`
					Scenarios []map[string]any `json:"scenarios"`
				} `json:"properties"`
			} `json:"items"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	require.Len(t, out.Documents, 1)
	doc := out.Documents[0]
	assert.Equal(t, "list.bp", doc.Path)
	assert.Equal(t, "notation", doc.Kind)
	require.Len(t, doc.Items, 2)

	block := doc.Items[0]
	assert.Equal(t, "block", block.Kind)
	assert.Equal(t, "LinkedList<T>", block.Identifier)
	keys := make([]string, 0, len(block.Properties))
	for _, p := range block.Properties {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"properties", "push", "x-trace", "tags", "find", "behaviors"}, keys)

	assert.Equal(t, "call", block.Properties[1].Value["kind"])
	assert.Equal(t, "Void", block.Properties[1].Value["result"])
	assert.Equal(t, "bare", block.Properties[2].Value["kind"])
	require.Len(t, block.Properties[5].Scenarios, 1)
	assert.Equal(t, "an empty list", block.Properties[5].Scenarios[0]["given"])

	assert.Equal(t, "reference", doc.Items[1].Kind)
	assert.Equal(t, "helpers.bp", doc.Items[1].Path)
}

func TestJSON_NullAndNumbers(t *testing.T) {
	doc, err := parser.ParseString("S s { a: null, b: 3.5, c: -2 }")
	require.NoError(t, err)
	var buf bytes.Buffer

	require.NoError(t, WriteValue(&buf, FormatJSON, doc.Blocks()[0]))

	assert.Contains(t, buf.String(), `"value": null`)
	assert.Contains(t, buf.String(), `"value": 3.5`)
	assert.Contains(t, buf.String(), `"value": -2`)
}

func TestYAML(t *testing.T) {
	ws := sampleWorkspace(t)
	var buf bytes.Buffer

	require.NoError(t, YAML(&buf, ws))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out), buf.String())
	assert.Equal(t, "list.bp", out["path"])

	items := out["items"].([]any)
	require.Len(t, items, 2)
	block := items[0].(map[string]any)
	assert.Equal(t, "DataStructure", block["type"])
	props := block["properties"].(map[string]any)
	assert.Equal(t, []any{"a", "b", 3.5, true}, props["tags"])
	assert.Equal(t, "on", props["x-trace"])
	head := props["properties"].(map[string]any)["head"].(map[string]any)
	assert.Equal(t, "Node<T>", head["type"])
	assert.Nil(t, head["default"])

	// Mapping order follows the source.
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &node))
	propsNode := node.Content[0].Content[5].Content[0].Content[5]
	assert.Equal(t, "properties", propsNode.Content[0].Value)
	assert.Equal(t, "push", propsNode.Content[2].Value)
}

func TestYAML_DuplicateKeysBecomePairs(t *testing.T) {
	doc, err := parser.ParseString("S s { a: 1\n a: 2 }")
	require.NoError(t, err)
	var buf bytes.Buffer

	require.NoError(t, WriteValue(&buf, FormatYAML, doc.Blocks()[0]))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	pairs := out["properties"].([]any)
	assert.Len(t, pairs, 2)
}

func TestHCL(t *testing.T) {
	// Arrange
	ws := sampleWorkspace(t)
	var buf bytes.Buffer

	// Act
	require.NoError(t, HCL(&buf, ws))

	// Assert
	file, diags := hclsyntax.ParseConfig(buf.Bytes(), "out.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "%s\n%s", diags.Error(), buf.String())

	body := file.Body.(*hclsyntax.Body)
	require.Len(t, body.Blocks, 2)
	list := body.Blocks[0]
	assert.Equal(t, "DataStructure", list.Type)
	assert.Equal(t, []string{"LinkedList<T>"}, list.Labels)

	var nested []string
	for _, b := range list.Body.Blocks {
		nested = append(nested, b.Type)
	}
	assert.Equal(t, []string{"properties", "property", "call"}, nested)
	assert.Contains(t, list.Body.Attributes, "push")
	assert.Contains(t, list.Body.Attributes, "tags")
	assert.Contains(t, buf.String(), `property "x-trace" {`)
	assert.Contains(t, buf.String(), `signature = "find(q: Query) -> Node<T>"`)

	assert.Equal(t, "reference", body.Blocks[1].Type)
	assert.Contains(t, buf.String(), "# list.bp")
}

func TestHCL_RepeatedKeysAreKept(t *testing.T) {
	// Arrange
	doc, err := parser.Parse([]byte(`
Service A {
  x: 1
  x: 2
  login(user) -> Token
  login(user, otp) -> Token
  objects: [{ b: 1, a: 2 }, { k: 1, k: 2 }]
  named: [Policy P { type: x }]
}`), "a.bp")
	require.NoError(t, err)
	var buf bytes.Buffer

	// Act
	require.NoError(t, HCL(&buf, model.NewWorkspace(doc)))

	// Assert
	out := buf.String()
	file, diags := hclsyntax.ParseConfig(buf.Bytes(), "out.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "%s\n%s", diags.Error(), out)
	service := file.Body.(*hclsyntax.Body).Blocks[0].Body

	attr := func(name string) cty.Value {
		t.Helper()
		a, ok := service.Attributes[name]
		require.True(t, ok, "missing attribute %q in\n%s", name, out)
		v, diags := a.Expr.Value(nil)
		require.False(t, diags.HasErrors(), diags.Error())
		return v
	}
	assert.True(t, attr("x").Equals(cty.NumberIntVal(1)).True())
	assert.Equal(t, "login(user) -> Token", attr("login").AsString())

	require.Len(t, service.Blocks, 2, out)
	repeats := []struct {
		key  string
		want cty.Value
	}{
		{key: "x", want: cty.NumberIntVal(2)},
		{key: "login", want: cty.StringVal("login(user, otp) -> Token")},
	}
	for i, tc := range repeats {
		b := service.Blocks[i]
		assert.Equal(t, "property", b.Type)
		assert.Equal(t, []string{tc.key}, b.Labels)
		v, diags := b.Body.Attributes["value"].Expr.Value(nil)
		require.False(t, diags.HasErrors(), diags.Error())
		assert.True(t, v.Equals(tc.want).True(), "got %#v", v)
	}

	objects := attr("objects")
	first := objects.Index(cty.NumberIntVal(0))
	assert.True(t, first.GetAttr("b").Equals(cty.NumberIntVal(1)).True())
	assert.Less(t, strings.Index(out, "b = 1"), strings.Index(out, "a = 2"), "object keys keep source order")
	pairs := objects.Index(cty.NumberIntVal(1))
	require.Equal(t, 2, pairs.LengthInt())
	assert.Equal(t, "k", pairs.Index(cty.NumberIntVal(1)).GetAttr("key").AsString())
	assert.True(t, pairs.Index(cty.NumberIntVal(1)).GetAttr("value").Equals(cty.NumberIntVal(2)).True())

	named := attr("named").Index(cty.NumberIntVal(0))
	assert.Equal(t, "Policy", named.GetAttr("type").AsString())
	assert.Equal(t, "P", named.GetAttr("identifier").AsString())
	assert.Equal(t, "x", named.GetAttr("properties").GetAttr("type").AsString())
}
