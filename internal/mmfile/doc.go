// Package mmfile loads hive files read-only for scanning. On unix the file is
// memory-mapped privately so that multi-hundred-megabyte hives do not have to
// be copied onto the heap; elsewhere the file is read into memory.
//
// The returned slice must not be used after the release function runs.
// Release is idempotent.
package mmfile
