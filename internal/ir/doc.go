// Package ir provides the lowered intermediate representation consumed by the
// validation pass and the code generator.
//
// A lowered unit (LinearIR) is an ordered sequence of Expressions. Each
// Expression carries a Kind tag, port descriptors (shape + layout) for its
// inputs and outputs, and PortConnectors that model produced values and their
// consumers. Loops are delimited by LoopBegin/LoopEnd marker expressions; the
// authoritative loop metadata lives in the LoopManager.
//
// This package contains the data model only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Memory-access capability is queried per port, never by type assertion
//   - Kinds are closed string tags, extensible only through RegisterKind
//   - Integer shapes, strides and offsets only (int64), no floats
//   - All JSON tags use snake_case
package ir
