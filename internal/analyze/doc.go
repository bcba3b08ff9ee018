// Package analyze checks `mark` struct tags without running the program.
//
// It loads packages with golang.org/x/tools/go/packages, classifies every
// exported struct field by its go/types type and resolves the tagged
// marker chains the same way the reflection based hint.Struct does at
// run time. Problems come back as diagnostics with source positions.
//
// Key types:
//   - TypeID: package import path + type name
//   - StructInfo: one exported struct and its visible fields
//   - FieldInfo: field name, static kind, tags and position
package analyze
