package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the sub-word encoding used for all token counts in the
// store. Changing it invalidates every stored token_count and requires a full
// re-chunk of all documents.
const DefaultEncoding = "cl100k_base"

// Counter reports how many tokens a piece of text encodes to. Implementations
// must be deterministic within a run and return 0 for the empty string.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts tokens with an OpenAI BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding, or DefaultEncoding when name is empty.
func NewTiktoken(name string) (*Tiktoken, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", name, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of BPE tokens in text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
