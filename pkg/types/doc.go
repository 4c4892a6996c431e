// Package types defines the small shared vocabulary of the scanner: hive type
// tags, correlation confidence levels, typed errors and the plausibility
// windows that recovered fields must fall into.
//
// Design goals:
//   - Bounds and plausibility failures are never errors; they mean "not found".
//   - Typed errors with stable categories for the few operations that can fail
//     (loading a hive, configuration, the narrative collaborator).
//
// This package has no dependencies beyond the standard library.
package types
