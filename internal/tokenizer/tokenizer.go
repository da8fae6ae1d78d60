// Package tokenizer provides token counters for the chunk splitter.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"doc-ingest/internal/splitter"
)

// DefaultEncoding is the BPE vocabulary used when none is configured.
const DefaultEncoding = "cl100k_base"

// NewTiktoken returns a counter backed by the named tiktoken encoding.
// The counter is safe for concurrent use and returns 0 for empty input.
func NewTiktoken(encoding string) (splitter.TokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer encoding %q: %w", encoding, err)
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// WordCount approximates tokens by whitespace-delimited words. Used as a
// degraded counter when the BPE encoding cannot be loaded.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
