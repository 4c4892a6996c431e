package narrative

import (
	"context"
	"encoding/json"
	"reflect"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"charm.land/fantasy/schema"

	"github.com/forensicFODs/registry-analysis-tools/internal/config"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// report is the object a hosted model is asked to return.
type report struct {
	Summary              string   `json:"summary"`
	SuspiciousActivities []string `json:"suspiciousActivities"`
	Timeline             []Event  `json:"timeline"`
	Recommendations      []string `json:"recommendations"`
}

var _ Provider = (*FantasyProvider)(nil)

// FantasyProvider asks a hosted model for a structured narrative.
type FantasyProvider struct {
	model fantasy.LanguageModel
	name  string
}

// NewFantasyProvider connects to the model named by an already validated AI
// section. An empty provider yields ErrNoProvider.
func NewFantasyProvider(ctx context.Context, cfg config.AIConfig) (*FantasyProvider, error) {
	provider, err := hostedProvider(cfg)
	if err != nil {
		return nil, err
	}
	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, types.Wrap(types.ErrKindProvider, "language model "+cfg.Model, err)
	}
	return &FantasyProvider{model: model, name: cfg.Provider}, nil
}

func hostedProvider(cfg config.AIConfig) (fantasy.Provider, error) {
	var (
		p   fantasy.Provider
		err error
	)
	switch cfg.Provider {
	case "":
		return nil, types.ErrNoProvider
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		p, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		p, err = anthropic.New(opts...)
	case "openrouter":
		p, err = openrouter.New(openrouter.WithAPIKey(cfg.APIKey))
	default:
		return nil, types.Wrap(types.ErrKindConfig, "unsupported ai.provider "+cfg.Provider, nil)
	}
	if err != nil {
		return nil, types.Wrap(types.ErrKindProvider, cfg.Provider, err)
	}
	return p, nil
}

// Name returns the provider name.
func (p *FantasyProvider) Name() string { return p.name }

// Narrate implements Provider with a schema-constrained object call. The
// returned object goes through Parse, so missing or oddly typed fields are
// read the same way as a free-text answer.
func (p *FantasyProvider) Narrate(ctx context.Context, prompt string) (Narrative, error) {
	resp, err := p.model.GenerateObject(ctx, fantasy.ObjectCall{
		Prompt: fantasy.Prompt{fantasy.NewUserMessage(prompt)},
		Schema: schema.Generate(reflect.TypeFor[report]()),
	})
	if err != nil {
		return Narrative{}, err
	}
	raw, err := json.Marshal(resp.Object)
	if err != nil {
		return Narrative{}, err
	}
	return Parse(string(raw)), nil
}
