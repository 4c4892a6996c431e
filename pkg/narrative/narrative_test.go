package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func textProvider(resp string, err error) TextProvider {
	return func(context.Context, string) (string, error) { return resp, err }
}

func TestAnalyzeParsesFencedAnswer(t *testing.T) {
	p := textProvider("Here you go:\n```json\n"+`{
  "summary": "Remote access tool executed",
  "suspiciousActivities": ["nc.exe in C:\\Tools"],
  "timeline": [{"timestamp": "2023-05-01 12:00:00", "event": "nc.exe ran"}, "undated note"],
  "recommendations": ["Isolate the host"]
}`+"\n```\nLet me know.", nil)

	n := Analyze(t.Context(), p, Input{HiveType: types.HiveSystem})
	require.Empty(t, n.Error)
	assert.Equal(t, "Remote access tool executed", n.Summary)
	assert.Equal(t, []string{`nc.exe in C:\Tools`}, n.SuspiciousActivities)
	assert.Equal(t, []Event{
		{Timestamp: "2023-05-01 12:00:00", Event: "nc.exe ran"},
		{Event: "undated note"},
	}, n.Timeline)
	assert.Equal(t, []string{"Isolate the host"}, n.Recommendations)
}

func TestAnalyzeSurfacesProviderError(t *testing.T) {
	p := textProvider("", errors.New("429 too many requests"))
	n := Analyze(t.Context(), p, Input{HiveType: types.HiveSAM})
	assert.Contains(t, n.Error, "narrative request")
	assert.Contains(t, n.Error, "429")
	assert.Empty(t, n.Summary)
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	n := Analyze(t.Context(), nil, Input{})
	assert.Equal(t, types.ErrNoProvider.Error(), n.Error)
}

func TestParseMalformed(t *testing.T) {
	for _, resp := range []string{"", "no json here", "{broken", "[1,2]"} {
		n := Parse(resp)
		assert.Equal(t, "malformed narrative response", n.Error, resp)
	}
}

func TestParseLenientShapes(t *testing.T) {
	n := Parse(`{"summary": "ok", "recommendations": "patch now", "error": "partial"}`)
	assert.Equal(t, "ok", n.Summary)
	assert.Equal(t, []string{"patch now"}, n.Recommendations)
	assert.Nil(t, n.SuspiciousActivities)
	assert.Equal(t, "partial", n.Error)
}

func TestBuildPromptCapsStrings(t *testing.T) {
	strs := make([]string, 40)
	for i := range strs {
		strs[i] = fmt.Sprintf("string-%02d", i)
	}
	findings := ordereddict.NewDict().Set("shimcache", []string{`C:\x.exe`})

	prompt, err := BuildPrompt(Input{HiveType: types.HiveNTUser, Strings: strs, Findings: findings, Language: "Korean"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "NTUSER hive")
	assert.Contains(t, prompt, "string-29")
	assert.NotContains(t, prompt, "string-30")
	assert.Contains(t, prompt, `"shimcache"`)
	assert.Contains(t, prompt, "Write every value in Korean.")
	assert.True(t, strings.HasSuffix(prompt, "}"))
}

type recordingProvider struct {
	prompt string
	n      Narrative
}

func (r *recordingProvider) Narrate(_ context.Context, prompt string) (Narrative, error) {
	r.prompt = prompt
	return r.n, nil
}

func TestAnalyzeReturnsStructuredNarrative(t *testing.T) {
	p := &recordingProvider{n: Narrative{Summary: "clean", Recommendations: []string{"none"}}}

	n := Analyze(t.Context(), p, Input{HiveType: types.HiveSoftware, Language: "German"})
	assert.Equal(t, p.n, n)
	assert.Contains(t, p.prompt, "SOFTWARE hive")
	assert.Contains(t, p.prompt, "Write every value in German.")
}
