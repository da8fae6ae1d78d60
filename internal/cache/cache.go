package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache provides query result caching
type Cache interface {
	// GetQueryResult retrieves a cached query result by key
	// Returns nil if not found
	GetQueryResult(ctx context.Context, key string) (*QueryResult, error)

	// SetQueryResult stores a query result with TTL
	SetQueryResult(ctx context.Context, key string, result *QueryResult, ttl time.Duration) error

	// InvalidateDocument removes all cached queries for a document
	InvalidateDocument(ctx context.Context, docID string) error

	// Close closes the cache connection
	Close() error
}

// QueryResult represents a cached query response. Sources is kept as raw
// JSON so the cache stays agnostic of the query service's response shape.
type QueryResult struct {
	Answer     string          `json:"answer"`
	Confidence float32         `json:"confidence"`
	Sources    json.RawMessage `json:"sources"`
}
