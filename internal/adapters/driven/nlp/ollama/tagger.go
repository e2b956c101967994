// Package ollama provides a phrase tagger adapter using Ollama.
//
// The tagger asks a local model to return noun chunks, part-of-speech
// tokens and named entities as JSON.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure Tagger implements the interface.
var _ driven.PhraseTagger = (*Tagger)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Ollama tagger.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Tagger tags product text using an Ollama model.
type Tagger struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const tagPrompt = `Analyse this product text. Return JSON with exactly these fields:
"noun_chunks": noun phrases as they appear in the text,
"tokens": every word as {"text": word, "pos": universal POS tag such as ADJ, NOUN, VERB},
"entities": named entities as {"text": entity, "label": one of PRODUCT, ORG, MONEY, OTHER}.
Return only JSON.

Text: %s`

// New creates a new Ollama tagger.
func New(cfg Config) *Tagger {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Tagger{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Tag returns noun chunks, part-of-speech tokens and entities for text.
func (t *Tagger) Tag(ctx context.Context, text string) (*driven.TaggedText, error) {
	jsonBody, err := json.Marshal(generateRequest{
		Model:   t.model,
		Prompt:  fmt.Sprintf(tagPrompt, text),
		Stream:  false,
		Format:  "json",
		Options: &options{Temperature: 0},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var tagged driven.TaggedText
	if err := json.Unmarshal([]byte(genResp.Response), &tagged); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	normalise(&tagged)
	return &tagged, nil
}

// normalise upper-cases tags and labels and drops empty entries.
func normalise(t *driven.TaggedText) {
	chunks := t.NounChunks[:0]
	for _, c := range t.NounChunks {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, strings.ToLower(c))
		}
	}
	t.NounChunks = chunks

	tokens := t.Tokens[:0]
	for _, tok := range t.Tokens {
		tok.Text = strings.ToLower(strings.TrimSpace(tok.Text))
		tok.POS = strings.ToUpper(strings.TrimSpace(tok.POS))
		if tok.Text != "" {
			tokens = append(tokens, tok)
		}
	}
	t.Tokens = tokens

	entities := t.Entities[:0]
	for _, e := range t.Entities {
		e.Text = strings.ToLower(strings.TrimSpace(e.Text))
		e.Label = strings.ToUpper(strings.TrimSpace(e.Label))
		if e.Text != "" {
			entities = append(entities, e)
		}
	}
	t.Entities = entities
}

// ModelName returns the tagging model.
func (t *Tagger) ModelName() string {
	return t.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
func (t *Tagger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (t *Tagger) Close() error {
	return nil
}
