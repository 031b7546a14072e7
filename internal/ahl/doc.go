// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package ahl implements the generic indentation-based line grammar that the
// SWIX dialect is built on.
//
// Processing happens in three layers:
//
//   - Lex turns raw text into LineRecords: indent width, an optional keyword
//     (`:section`, `!inline`, `?meta`), an optional key and an ordered
//     `:: name=value, ...` attribute list.
//
//   - Parse nests the records purely by indent width and reports Open/Close
//     events to a Builder, closing nodes innermost first on every dedent and
//     at end of input.
//
//   - Dispatcher is the Builder that gives the events meaning. Every line is
//     routed through the Handlers table of the context it appears in, and
//     every node gets an attribute Scope chained to its parent's, so values
//     declared on an outer line are inherited by the lines nested under it.
//     Keys and attribute values are expanded once for $(swix.var.NAME) and
//     $(swix.env.NAME) references.
//
// Dialects plug in by implementing Context and registering handlers; the
// package knows nothing about installers.
package ahl
