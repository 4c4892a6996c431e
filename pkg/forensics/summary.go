package forensics

import (
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// Summary counts the engine's current contents.
type Summary struct {
	LoadedHives    []types.HiveType `json:"loadedHives"`
	HiveCount      int              `json:"hiveCount"`
	ArtifactKinds  int              `json:"artifactKinds"`
	Correlations   int              `json:"correlations"`
	HighConfidence int              `json:"highConfidence"`
	TimelineEvents int              `json:"timelineEvents"`
}

// Summary reports the current state without recomputing anything.
// ArtifactKinds counts non-empty artifact lists summed over hives.
func (e *Engine) Summary() Summary {
	s := Summary{
		LoadedHives:    e.Hives(),
		HiveCount:      len(e.hives),
		Correlations:   len(e.correlations),
		TimelineEvents: len(e.timeline),
	}
	for _, typ := range e.order {
		s.ArtifactKinds += len(e.hives[typ].findings.NonEmptyKinds())
	}
	for _, c := range e.correlations {
		if c.Confidence == types.ConfidenceHigh {
			s.HighConfidence++
		}
	}
	return s
}
