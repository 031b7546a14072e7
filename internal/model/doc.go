// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the typed document an installer description
// compiles into. It is the hand-off point between the SWIX dialect, which
// fills it line by line, and the emitter, which renders it as WiX markup.
//
// # Core Concepts
//
//   - Directory: a node of the target directory tree. A directory without an
//     explicit id gets one derived from its name; the emitter refuses two
//     derived ids that collide.
//
//   - Cab: a cabinet declaration. Components point at cabs by name.
//
//   - Component: one installed file, the directory it lands in, the cab it
//     ships in, and the services and shortcuts attached to it.
//
// Types here only validate their own fields. Cross references (component to
// cab, component to directory) are checked by the emitter once the whole
// document exists.
package model
