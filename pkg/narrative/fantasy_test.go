package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicFODs/registry-analysis-tools/internal/config"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func TestNewFantasyProviderWithoutProvider(t *testing.T) {
	_, err := NewFantasyProvider(t.Context(), config.Default().AI)
	require.ErrorIs(t, err, types.ErrNoProvider)
}

func TestNewFantasyProviderRejectsUnknownProvider(t *testing.T) {
	_, err := NewFantasyProvider(t.Context(), config.AIConfig{Provider: "ollama", Model: "llama3"})
	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.ErrKindConfig, te.Kind)
	assert.Contains(t, err.Error(), "ollama")
}
