// Package extract turns raw hive bytes into artifact records.
//
// Every extractor follows the same shape: search the buffer for seed patterns
// specific to the artifact kind, recover corroborating fields from a bounded
// window around each seed, drop implausible candidates, then merge candidates
// that share a key and sort the survivors.
//
// Extractors only read the buffer. A field that cannot be recovered is left
// empty; a candidate is dropped only when its primary field (path, program,
// SID, ...) is missing or invalid. Nothing here returns an error.
//
// Applicability gates tie most kinds to the hive type they live in; a gated
// extractor returns nil immediately for any other hive.
package extract
