// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines FileReference, the `Name found in `path`` declaration.
//
// Why not load the referenced file?
//
// A reference names an external component, usually implementation code in
// another language. Loading it is the job of whoever consumes the tree; the
// model only records the name, the path as written, and where the declaration
// sits so a validator can check that the path exists.
package model

import "github.com/hashicorp/hcl/v2"

// FileReference declares that a named component lives in an external file.
// It appears at the root of a document or as a property value.
type FileReference struct {
	Name     string
	Path     string
	SrcRange hcl.Range
}

// Range implements Value and Node.
func (r *FileReference) Range() hcl.Range { return r.SrcRange }

func (*FileReference) value() {}
func (*FileReference) node()  {}
