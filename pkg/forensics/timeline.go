package forensics

import (
	"sort"

	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// TimelineEvent is one timestamped artifact.
type TimelineEvent struct {
	Timestamp   string          `json:"timestamp"`
	Field       string          `json:"timestampField"`
	Hive        types.HiveType  `json:"hive"`
	Kind        artifact.Kind   `json:"artifactType"`
	Artifact    artifact.Record `json:"artifact"`
	Description string          `json:"description"`
}

// BuildTimeline rebuilds the timeline from every loaded hive. Events are
// ordered by timestamp string; ties keep hive load order, then kind order,
// then record order.
func (e *Engine) BuildTimeline() []TimelineEvent {
	var events []TimelineEvent
	e.each(func(typ types.HiveType, f *artifact.Findings) {
		for _, k := range artifact.AllKinds {
			for _, rec := range f.Records(k) {
				field, ts := rec.Stamp()
				if ts == "" || ts == artifact.NotAvailable {
					continue
				}
				events = append(events, TimelineEvent{
					Timestamp:   ts,
					Field:       field,
					Hive:        typ,
					Kind:        k,
					Artifact:    rec,
					Description: rec.Describe(),
				})
			}
		}
	})
	// All timestamps share one zero-padded layout, so string order is
	// chronological order.
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	e.timeline = events
	if len(e.hives) > 0 {
		e.state = StateTimelined
	}
	logger.Info("timeline built", "events", len(events))
	return events
}

// Timeline returns the result of the last BuildTimeline call.
func (e *Engine) Timeline() []TimelineEvent { return e.timeline }
