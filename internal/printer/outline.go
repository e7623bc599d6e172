package printer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/specialistvlad/blueprint/internal/model"
)

// Outline writes a short summary of every document in ws: one line per root
// block or file reference with its position.
func Outline(w io.Writer, ws *model.Workspace) error {
	bw := bufio.NewWriter(w)
	for _, doc := range ws.Documents {
		fmt.Fprintf(bw, "%s (%s)\n", doc.Path, doc.Kind)
		if len(doc.Items) == 0 {
			fmt.Fprintln(bw, "  (empty)")
		}
		for _, item := range doc.Items {
			pos := item.Range().Start
			switch t := item.(type) {
			case *model.Block:
				name := t.Type
				if t.Identifier != "" {
					name += " " + identifier(t.Identifier)
				}
				fmt.Fprintf(bw, "  %s  %d:%d  %s\n", name, pos.Line, pos.Column, counts(t))
			case *model.FileReference:
				fmt.Fprintf(bw, "  %s found in `%s`  %d:%d\n", t.Name, t.Path, pos.Line, pos.Column)
			}
		}
	}
	return bw.Flush()
}

func counts(b *model.Block) string {
	scenarios := 0
	model.Walk(b, func(v model.Value) {
		if nested, ok := v.(*model.Block); ok {
			for _, p := range nested.Properties {
				scenarios += len(p.Scenarios)
			}
		}
	})

	s := plural(len(b.Properties), "property", "properties")
	if scenarios > 0 {
		s += ", " + plural(scenarios, "scenario", "scenarios")
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
