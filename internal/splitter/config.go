package splitter

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidConfig is wrapped by all NewConfig validation failures.
var ErrInvalidConfig = errors.New("invalid chunking config")

// Config controls chunk sizing. Values are fixed at construction and never
// silently corrected afterwards.
type Config struct {
	// ChunkSize is the maximum number of tokens per chunk.
	ChunkSize int
	// ChunkOverlap is the number of tokens copied from the tail of one chunk
	// into the head of the next. Always strictly less than ChunkSize.
	ChunkOverlap int
	// MinChunkSize is the minimum character length for a fragment to be kept
	// after splitting.
	MinChunkSize int
}

// NewConfig validates chunking parameters and returns an immutable Config.
func NewConfig(chunkSize, chunkOverlap, minChunkSize int) (Config, error) {
	if chunkSize <= 0 {
		return Config{}, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 {
		return Config{}, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ErrInvalidConfig, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return Config{}, fmt.Errorf("%w: chunk overlap (%d) must be less than chunk size (%d)", ErrInvalidConfig, chunkOverlap, chunkSize)
	}
	if minChunkSize <= 0 {
		return Config{}, fmt.Errorf("%w: min chunk size must be positive, got %d", ErrInvalidConfig, minChunkSize)
	}
	if minChunkSize > chunkSize*charsPerToken {
		// Advisory only: with roughly four characters per token, fragments
		// may never clear the minimum-size filter.
		slog.Warn("min chunk size may exceed chunk capacity",
			"min_chunk_size_chars", minChunkSize,
			"chunk_size_tokens", chunkSize,
			"approx_chunk_chars", chunkSize*charsPerToken)
	}
	return Config{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		MinChunkSize: minChunkSize,
	}, nil
}
