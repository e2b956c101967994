package driven

import "context"

// Entity labels accepted by feature extraction.
const (
	EntityProduct      = "PRODUCT"
	EntityOrganization = "ORG"
	EntityMoney        = "MONEY"
)

// TaggedToken is a token with its part-of-speech tag (e.g. ADJ, NOUN).
type TaggedToken struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
}

// Entity is a named entity with its label.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// TaggedText is the NLP view of a text.
type TaggedText struct {
	NounChunks []string      `json:"noun_chunks"`
	Tokens     []TaggedToken `json:"tokens"`
	Entities   []Entity      `json:"entities"`
}

// PhraseTagger is the optional NLP capability used by feature extraction.
// When nil, feature extraction uses the token fallback.
type PhraseTagger interface {
	// Tag returns noun chunks, part-of-speech tokens and entities.
	Tag(ctx context.Context, text string) (*TaggedText, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// ModelName returns the tagging model.
	ModelName() string

	// Close releases resources.
	Close() error
}
