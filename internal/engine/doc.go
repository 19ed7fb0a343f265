// Package engine drives one generation run over a set of documents.
//
// A run is a strict batch pipeline:
//
//  1. Lex and parse every document in order, splicing included documents
//     in at their include directive (each document at most once)
//  2. Index classes; a duplicate class name is fatal
//  3. Select records that inherit from the intrinsic class, then resolve
//     every record's base list
//  4. Extract intrinsics; a record whose descriptors do not intern is
//     skipped with a warning
//  5. Validate every intrinsic; any validation error is fatal
//  6. Expand signatures and group them by architecture
//
// Output is deterministic: groups are sorted by architecture, intrinsics by
// name, and signatures keep row order. The same input always produces the
// same fingerprint.
//
// The pipeline is single-threaded. Context cancellation is observed between
// stages, never inside one.
package engine
