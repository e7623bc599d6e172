// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the property value types.
//
// Why cty.Value for scalars?
//
// Literals in BluePrint are the same literals HCL has: quoted strings with
// escapes, numbers of arbitrary precision, booleans and null. Storing them as
// cty values means the exporters and the printer can hand them to cty/json and
// hclwrite without writing our own number formatting or string escaping, and
// equality between two trees is cty equality.
//
// Why keep bare text verbatim?
//
// The notation is meant to be written by people and language models. Values
// like `email is valid format` or `O(log n)` are not expressions of any
// language; the only faithful representation is the text as written.
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Value is implemented by every property value type.
type Value interface {
	Range() hcl.Range
	value()
}

// Scalar is a string, number, bool or null literal.
type Scalar struct {
	Val      cty.Value
	SrcRange hcl.Range
}

// Bare is an unquoted run of text such as `UserRepository` or
// `password meets security requirements`.
type Bare struct {
	Text     string
	SrcRange hcl.Range
}

// Array is an ordered list of values.
type Array struct {
	Items    []Value
	SrcRange hcl.Range
}

// Call is a function-call-like signature: `insert(value: T) -> void`,
// optionally followed by a body block holding its contract.
type Call struct {
	Name     string
	Args     []*Argument
	Result   string
	Body     *Block
	SrcRange hcl.Range
}

// Argument is one entry of a call's argument list. Name is empty for
// positional arguments such as the `5` in `insert(5)`.
type Argument struct {
	Name string
	Expr string
}

// Typed is a declaration with a type expression and a default value, as in
// `head: Node<T> = null`.
type Typed struct {
	Type     string
	Default  Value
	SrcRange hcl.Range
}

func (v *Scalar) Range() hcl.Range { return v.SrcRange }
func (v *Bare) Range() hcl.Range   { return v.SrcRange }
func (v *Array) Range() hcl.Range  { return v.SrcRange }
func (v *Call) Range() hcl.Range   { return v.SrcRange }
func (v *Typed) Range() hcl.Range  { return v.SrcRange }

func (*Scalar) value() {}
func (*Bare) value()   {}
func (*Array) value()  {}
func (*Call) value()   {}
func (*Typed) value()  {}

// String returns the text of a string scalar or a bare value, and false for
// anything else.
func String(v Value) (string, bool) {
	switch t := v.(type) {
	case *Bare:
		return t.Text, true
	case *Scalar:
		if t.Val.IsKnown() && !t.Val.IsNull() && t.Val.Type() == cty.String {
			return t.Val.AsString(), true
		}
	}
	return "", false
}
