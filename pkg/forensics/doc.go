// Package forensics correlates artifacts recovered from several registry
// hives and merges them into one timeline.
//
// An Engine holds at most one hive per HiveType. Each hive is scanned once
// when it is added; correlations and the timeline are rebuilt from the
// stored findings on every call.
//
//	eng := forensics.NewEngine(forensics.Options{})
//	defer eng.Close()
//	if _, err := eng.AddHiveFile("SYSTEM", types.HiveUnknown); err != nil {
//		return err
//	}
//	corrs := eng.FindCorrelations()
//	events := eng.BuildTimeline()
//
// An Engine is not safe for concurrent use. Callers that share one must
// serialize access.
package forensics
