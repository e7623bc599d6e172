// Package markdown finds BluePrint notation embedded in Markdown files as
// fenced code blocks tagged blueprint, bp or bps.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
)

// Languages are the fence info strings that mark BluePrint notation.
var Languages = []string{"blueprint", "bp", "bps"}

// Fence is one fenced code block.
type Fence struct {
	Lang    string
	Content []byte
	// Start is the position of the first content byte in the Markdown file.
	Start hcl.Pos
}

// Extract returns the BluePrint fences of src in order. A fence left open
// runs to the end of the file.
func Extract(src []byte) []Fence {
	var fences []Fence

	var (
		open      *Fence
		foreign   bool // inside a fence of another language
		marker    byte
		markerLen int
	)

	offset, lineNo := 0, 1
	for offset < len(src) {
		line := src[offset:]
		next := len(src)
		if end := bytes.IndexByte(line, '\n'); end >= 0 {
			line = line[:end]
			next = offset + end + 1
		}

		switch {
		case open != nil:
			if isClosing(line, marker, markerLen) {
				open.Content = src[open.Start.Byte:offset]
				fences = append(fences, *open)
				open = nil
			}
		case foreign:
			foreign = !isClosing(line, marker, markerLen)
		default:
			ch, n, info, ok := opening(line)
			if !ok {
				break
			}
			marker, markerLen = ch, n
			if !isBluePrint(info) {
				foreign = true
				break
			}
			open = &Fence{
				Lang:  strings.ToLower(strings.Fields(info)[0]),
				Start: hcl.Pos{Byte: next, Line: lineNo + 1, Column: 1},
			}
		}

		offset = next
		lineNo++
	}

	if open != nil {
		open.Content = src[open.Start.Byte:]
		fences = append(fences, *open)
	}

	return fences
}

// opening reports whether line opens a fence and returns its marker
// character, marker length and info string.
func opening(line []byte) (byte, int, string, bool) {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return 0, 0, "", false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return 0, 0, "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(string(trimmed[n:]))
	if ch == '`' && strings.Contains(info, "`") {
		return 0, 0, "", false
	}
	return ch, n, info, true
}

func isClosing(line []byte, marker byte, n int) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) < n {
		return false
	}
	for _, c := range trimmed {
		if c != marker {
			return false
		}
	}
	return true
}

func isBluePrint(info string) bool {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return false
	}
	lang := strings.ToLower(fields[0])
	for _, l := range Languages {
		if lang == l {
			return true
		}
	}
	return false
}

// Parse parses every BluePrint fence of a Markdown file into one document.
// Ranges point into the Markdown file.
func Parse(src []byte, filename string) (*model.Document, error) {
	doc := &model.Document{
		Path:   filename,
		Kind:   model.KindMarkdown,
		Source: src,
	}
	for i, fence := range Extract(src) {
		items, err := parser.ParseFragment(fence.Content, filename, fence.Start)
		if err != nil {
			return nil, fmt.Errorf("fence %d (line %d): %w", i+1, fence.Start.Line-1, err)
		}
		doc.Items = append(doc.Items, items...)
	}
	return doc, nil
}
