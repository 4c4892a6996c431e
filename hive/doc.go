// Package hive provides heuristic, read-only access to raw Windows registry
// hive buffers.
//
// # Overview
//
// This package does not parse the REGF cell structure. A hive is treated as an
// opaque byte buffer and evidence is located by literal pattern search plus
// bounded neighbourhood reads. Every read is bounds-checked and degrades to a
// zero value or an empty string instead of failing, so truncated or corrupt
// hives can still be scanned.
//
// # Key Types
//
//   - Buffer: an immutable hive buffer with typed reads, search and string
//     extraction
//   - types.HiveType: the hive classification returned by DetectType
//
// # Reading
//
//	b := hive.New(data, "SYSTEM")
//	for _, off := range b.SearchString(".exe") {
//	    path := b.ReadASCII(off-64, 128)
//	    ...
//	}
//
// Search results are memoised per buffer (see hive/searchcache); the buffer
// must therefore never be modified after New.
//
// Artifact extraction on top of Buffer lives in hive/extract.
package hive
