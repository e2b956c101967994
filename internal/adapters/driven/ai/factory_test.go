package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestCreatePhraseTagger(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.NLPSettings
		wantNil  bool
		wantErr  bool
	}{
		{"nil settings", nil, true, false},
		{"no provider", &domain.NLPSettings{}, true, false},
		{"ollama", &domain.NLPSettings{Provider: domain.NLPProviderOllama, Model: "llama3.2"}, false, false},
		{"unknown provider", &domain.NLPSettings{Provider: "spacy"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagger, err := CreatePhraseTagger(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported nlp provider")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantNil, tagger == nil)
		})
	}
}

func TestInitialise_NoProvider(t *testing.T) {
	settings := domain.DefaultAppSettings()

	result := Initialise(context.Background(), settings)
	defer result.Close()

	require.NotNil(t, result.EmbeddingService)
	assert.Equal(t, settings.Recommendation.EmbeddingDimensions, result.EmbeddingService.Dimensions())
	assert.Nil(t, result.PhraseTagger)
	assert.False(t, result.NLP.IsAvailable())
	assert.Empty(t, result.Warnings)
}

func TestInitialise_ReachableTagger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.NLP = domain.NLPSettings{Provider: domain.NLPProviderOllama, BaseURL: server.URL, Model: "llama3.2"}

	result := Initialise(context.Background(), settings)
	defer result.Close()

	assert.NotNil(t, result.PhraseTagger)
	assert.True(t, result.NLP.IsAvailable())
	assert.Empty(t, result.Warnings)
}

func TestInitialise_UnreachableTaggerFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.NLP = domain.NLPSettings{Provider: domain.NLPProviderOllama, BaseURL: server.URL}

	result := Initialise(context.Background(), settings)

	assert.Nil(t, result.PhraseTagger)
	assert.False(t, result.NLP.IsAvailable())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unreachable")

	_, err := CreateAndValidatePhraseTagger(context.Background(), &settings.NLP)
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}
