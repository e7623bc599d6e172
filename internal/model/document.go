// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Document, the result of parsing a single source.
//
// Why keep Items instead of separate Blocks and References slices?
//
// A BluePrint file is a sequence: a summary file usually starts with a list of
// `X found in `path`` lines and continues with blocks. Keeping one ordered
// slice lets the printer reproduce the file in its original order, while the
// Blocks and References helpers give the typed views most callers want.
package model

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// DocumentKind tells where a document came from.
type DocumentKind string

const (
	// KindNotation is a regular .bp / .blueprint file.
	KindNotation DocumentKind = "notation"
	// KindSummary is a .bps summary file documenting an API without implementation.
	KindSummary DocumentKind = "summary"
	// KindMarkdown is a document extracted from a fenced block of a Markdown file.
	KindMarkdown DocumentKind = "markdown"
)

// KindFromPath infers the document kind from a file name.
func KindFromPath(path string) DocumentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bps":
		return KindSummary
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindNotation
	}
}

// Node is implemented by everything that can appear at the root of a document.
type Node interface {
	Range() hcl.Range
	node()
}

// Document is one parsed source of BluePrint notation.
type Document struct {
	Path  string
	Kind  DocumentKind
	Items []Node

	// Source holds the bytes the ranges refer to. For markdown documents this
	// is the whole Markdown file, not only the fenced block.
	Source []byte
}

// Blocks returns the root-level typed blocks in source order.
func (d *Document) Blocks() []*Block {
	var blocks []*Block
	for _, item := range d.Items {
		if b, ok := item.(*Block); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// References returns every file reference in the document, both root-level
// ones and those used as property values, in source order.
func (d *Document) References() []*FileReference {
	var refs []*FileReference
	for _, item := range d.Items {
		switch v := item.(type) {
		case *FileReference:
			refs = append(refs, v)
		case *Block:
			Walk(v, func(val Value) {
				if ref, ok := val.(*FileReference); ok {
					refs = append(refs, ref)
				}
			})
		}
	}
	return refs
}

// Walk visits v and every value nested below it, depth first, in source order.
func Walk(v Value, fn func(Value)) {
	if v == nil {
		return
	}
	fn(v)
	switch t := v.(type) {
	case *Block:
		for _, p := range t.Properties {
			Walk(p.Value, fn)
		}
	case *Array:
		for _, item := range t.Items {
			Walk(item, fn)
		}
	case *Call:
		if t.Body != nil {
			Walk(t.Body, fn)
		}
	case *Typed:
		Walk(t.Default, fn)
	}
}
