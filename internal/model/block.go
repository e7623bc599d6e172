// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Block and Property, the structural units of the notation.
//
// Why is Block also a Value?
//
// The same `{ ... }` shape appears at the root (`Service Auth { ... }`), as a
// property value (`properties: { head: ... }`), inside arrays and as the body of
// a call signature. Treating every one of them as the same Block type keeps the
// validator and printer free of special cases: a root block is simply a Block
// with a non-empty Type.
package model

import "github.com/hashicorp/hcl/v2"

// Block is a typed, optionally named, ordered collection of properties.
// Anonymous blocks used as values have an empty Type and Identifier.
type Block struct {
	Type       string
	Identifier string
	Properties []*Property

	// SrcRange spans from the type keyword (or the opening brace) to the
	// closing brace. DefRange covers only the header.
	SrcRange hcl.Range
	DefRange hcl.Range
}

// Property is a key and its value.
type Property struct {
	Key string
	// Quoted records that the key was written as a string literal.
	Quoted bool
	// Shorthand records that the key is implied by the value: call entries
	// like `register(email) -> UserId { ... }` and typed block entries like
	// `Service Cache { ... }` written directly inside a body.
	Shorthand bool
	Value     Value

	// Scenarios is populated for behaviors-like properties only.
	Scenarios []*Scenario

	SrcRange hcl.Range
	KeyRange hcl.Range
}

// Range implements Value and Node.
func (b *Block) Range() hcl.Range { return b.SrcRange }

func (b *Block) value() {}
func (b *Block) node()  {}

// IsAnonymous reports whether the block has neither type nor identifier.
func (b *Block) IsAnonymous() bool {
	return b.Type == "" && b.Identifier == ""
}

// Property returns the first property with the given key, or nil.
func (b *Block) Property(key string) *Property {
	for _, p := range b.Properties {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// Keys returns the property keys in source order, duplicates included.
func (b *Block) Keys() []string {
	keys := make([]string, 0, len(b.Properties))
	for _, p := range b.Properties {
		keys = append(keys, p.Key)
	}
	return keys
}

// Range returns the full source range of the property.
func (p *Property) Range() hcl.Range { return p.SrcRange }
