// Package ir provides the intermediate representation types for tdgen.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This ensures IR remains the
// foundational layer with no circular dependencies.
//
// Two families of types live here:
//   - The record world: Object, ClassDecl, RecordDef, TDType, TDValue.
//     Produced by the parser, rewritten once by the class resolver.
//   - The closed type language (Type) and the values built from it:
//     Intrinsic and Signature.
//
// Key design constraints:
//   - TDValue and Type are sealed; every consumer switches exhaustively
//   - Structural equality for Type via Equal, never pointer identity
//   - All JSON tags use snake_case
package ir
