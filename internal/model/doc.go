// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of BluePrint notation. Its core
// purpose is to hold a strongly-typed, in-memory tree of a user's design
// documents after the parser has read the raw text.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Workspace: The root container for a whole project. It aggregates all
//     documents loaded from one or more .bp, .bps or Markdown files.
//
//   - Document: One parsed source. It keeps its root-level items in source
//     order: typed blocks and file references.
//
//   - Block: A typed, named structural unit such as `Service UserAuth { ... }`
//     or an anonymous `{ ... }` used as a property value.
//
//   - Property: A key and a Value. Values are scalars, bare words, arrays,
//     nested blocks, call signatures, typed declarations or file references.
//
//   - Scenario: A Given/When/Then triple or a free sentence derived from a
//     `behaviors` property.
//
// Why a separate model package?
//
// The parser, validator, printer and exporters all speak this model and
// nothing else. Every node carries its hcl.Range so that any later stage can
// point back at the exact line and column in the source file, which is what
// makes diagnostics useful.
//
// Trees are built once per parse call and are never mutated afterwards.
package model
