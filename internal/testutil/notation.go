package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
)

// ParseNotation parses src as a single file named main.bp and fails the test
// on a syntax error. It returns the root blocks.
func ParseNotation(t *testing.T, src string) (*model.Document, []*model.Block) {
	t.Helper()
	doc, err := parser.Parse([]byte(src), "main.bp")
	require.NoError(t, err, "notation should parse")
	return doc, doc.Blocks()
}
