// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Workspace, the root container for all documents
// loaded for one invocation.
//
// Why have a Workspace?
//
// A design is usually split across many files: a system overview, one file
// per service, summary files for existing APIs, fenced examples inside
// Markdown docs. Checks such as "this block is declared twice" only make sense
// across all of them, so the loader aggregates every parsed document here and
// the validator works on the aggregate.
package model

import "sort"

// Workspace aggregates all documents of a run, ordered by path.
type Workspace struct {
	Documents []*Document
}

// NewWorkspace creates and returns an initialized Workspace.
func NewWorkspace(docs ...*Document) *Workspace {
	w := &Workspace{Documents: []*Document{}}
	w.Add(docs...)
	return w
}

// Add appends documents and keeps the workspace ordered by path. Documents
// from the same file (several Markdown fences) keep their relative order.
func (w *Workspace) Add(docs ...*Document) {
	w.Documents = append(w.Documents, docs...)
	sort.SliceStable(w.Documents, func(i, j int) bool {
		return w.Documents[i].Path < w.Documents[j].Path
	})
}

// Blocks returns every root-level block of every document.
func (w *Workspace) Blocks() []*Block {
	var blocks []*Block
	for _, d := range w.Documents {
		blocks = append(blocks, d.Blocks()...)
	}
	return blocks
}

// Sources maps each document path to its source bytes, the shape expected by
// hcl diagnostic writers.
func (w *Workspace) Sources() map[string][]byte {
	srcs := make(map[string][]byte, len(w.Documents))
	for _, d := range w.Documents {
		srcs[d.Path] = d.Source
	}
	return srcs
}
