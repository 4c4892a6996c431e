// Package narrative asks a language model to summarise a hive's findings.
//
// The model is a black box behind Provider. Analyze shapes the prompt from
// the recovered strings and findings, and reads whatever comes back
// leniently: a failed request or an unreadable answer is reported in
// Narrative.Error, never returned as an error.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/tidwall/gjson"

	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// MaxPromptStrings caps the extracted strings quoted in a prompt.
const MaxPromptStrings = 30

// Provider turns a prompt into a Narrative. An error means the request
// itself failed; an unreadable answer is a Narrative with Error set.
type Provider interface {
	Narrate(ctx context.Context, prompt string) (Narrative, error)
}

// TextProvider adapts a free-text completion to Provider by reading the
// answer with Parse.
type TextProvider func(ctx context.Context, prompt string) (string, error)

// Narrate implements Provider.
func (f TextProvider) Narrate(ctx context.Context, prompt string) (Narrative, error) {
	resp, err := f(ctx, prompt)
	if err != nil {
		return Narrative{}, err
	}
	return Parse(resp), nil
}

// Input is what the model is shown about one hive.
type Input struct {
	HiveType types.HiveType
	Strings  []string
	Findings *ordereddict.Dict
	// Language, when set, is the language the answer should be written in.
	Language string
}

// Event is one entry of the model's timeline.
type Event struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// Narrative is the model's reading of a hive.
type Narrative struct {
	Summary              string   `json:"summary"`
	SuspiciousActivities []string `json:"suspiciousActivities"`
	Timeline             []Event  `json:"timeline"`
	Recommendations      []string `json:"recommendations"`
	Error                string   `json:"error,omitempty"`
}

// Analyze requests a narrative for in from p.
func Analyze(ctx context.Context, p Provider, in Input) Narrative {
	if p == nil {
		return Narrative{Error: types.ErrNoProvider.Error()}
	}
	prompt, err := BuildPrompt(in)
	if err != nil {
		return Narrative{Error: err.Error()}
	}
	logger.Debug("narrative request", "type", in.HiveType.String(), "promptBytes", len(prompt))

	n, err := p.Narrate(ctx, prompt)
	if err != nil {
		logger.Warn("narrative request failed", "type", in.HiveType.String(), "err", err)
		return Narrative{Error: types.Wrap(types.ErrKindProvider, "narrative request", err).Error()}
	}
	return n
}

// BuildPrompt renders the request text for in.
func BuildPrompt(in Input) (string, error) {
	findings := in.Findings
	if findings == nil {
		findings = ordereddict.NewDict()
	}
	raw, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", types.Wrap(types.ErrKindProvider, "encode findings", err)
	}
	strs := in.Strings
	if len(strs) > MaxPromptStrings {
		strs = strs[:MaxPromptStrings]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the forensic data recovered from a Windows registry %s hive.\n\n", in.HiveType)
	sb.WriteString("Artifacts recovered by binary scanning:\n")
	sb.Write(raw)
	fmt.Fprintf(&sb, "\n\nExtracted strings (first %d):\n", MaxPromptStrings)
	sb.WriteString(strings.Join(strs, "\n"))
	sb.WriteString(`

Provide a forensic analysis covering:
- a summary of the activity found
- suspicious or noteworthy items
- a timeline of events
- security recommendations
`)
	if in.Language != "" {
		fmt.Fprintf(&sb, "\nWrite every value in %s.\n", in.Language)
	}
	sb.WriteString(`
Return only this JSON structure:
{
  "summary": "short summary",
  "suspiciousActivities": ["item 1", "item 2"],
  "timeline": [{"timestamp": "2024-01-01", "event": "description"}],
  "recommendations": ["recommendation 1", "recommendation 2"]
}`)
	return sb.String(), nil
}

// Parse reads a model answer. Code fences and text around the outermost
// braces are ignored; missing fields are left empty.
func Parse(resp string) Narrative {
	body := extractJSON(resp)
	if body == "" || !gjson.Valid(body) {
		return Narrative{Error: "malformed narrative response"}
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return Narrative{Error: "malformed narrative response"}
	}

	n := Narrative{
		Summary:              doc.Get("summary").String(),
		SuspiciousActivities: stringList(doc.Get("suspiciousActivities")),
		Recommendations:      stringList(doc.Get("recommendations")),
		Error:                doc.Get("error").String(),
	}
	for _, item := range doc.Get("timeline").Array() {
		if item.IsObject() {
			n.Timeline = append(n.Timeline, Event{
				Timestamp: item.Get("timestamp").String(),
				Event:     item.Get("event").String(),
			})
			continue
		}
		if s := item.String(); s != "" {
			n.Timeline = append(n.Timeline, Event{Event: s})
		}
	}
	return n
}

// stringList accepts an array of strings or a single string.
func stringList(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	if !r.IsArray() {
		if s := r.String(); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range r.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func extractJSON(resp string) string {
	s := strings.TrimSpace(resp)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
