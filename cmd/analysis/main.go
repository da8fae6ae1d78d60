package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"doc-ingest/internal/app"
	"doc-ingest/internal/httputil"
	"doc-ingest/internal/queue"
	"doc-ingest/internal/store"
)

type analyzeTaskPayload struct {
	DocumentID string      `json:"document_id"`
	ChunkIDs   []uuid.UUID `json:"chunk_ids"`
}

func main() {
	deps, err := app.BuildAnalysis("analysis")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("analysis worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeAnalyze, func(ctx context.Context, task queue.Task) error {
			var payload analyzeTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleAnalyze(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.HealthPort, "analysis")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("analysis service stopped", "err", err)
	}
}

func handleAnalyze(ctx context.Context, deps app.AnalysisDeps, payload analyzeTaskPayload) error {
	// Parse and fetch chunks
	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return err
	}

	chunks, err := deps.Store.ListChunks(ctx, docID)
	if err != nil {
		return err
	}

	// Generate and save summary
	text := concatenateChunks(chunks)
	summaryText, keyPoints, err := deps.LLM.Summarize(ctx, text)
	if err != nil {
		return err
	}
	if err := deps.Store.SaveSummary(ctx, docID, store.Summary{
		Summary:   summaryText,
		KeyPoints: keyPoints,
	}); err != nil {
		return err
	}

	if len(chunks) > 0 {
		// Get document so each chunk can be embedded with its source context.
		doc, err := deps.Store.GetDocument(ctx, docID)
		if err != nil {
			return fmt.Errorf("failed to get document: %w", err)
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			// Enrich chunk with document context for better embeddings
			texts[i] = fmt.Sprintf("Document: %s\n\n%s", doc.Filename, c.Content)
		}
		vectors, err := deps.Embedder.EmbedBatch(texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		embs := make([]store.Embedding, len(chunks))
		for i, c := range chunks {
			embs[i] = store.Embedding{
				ChunkID: c.ID,
				Vector:  vectors[i],
				Model:   deps.Config.EmbeddingModel,
			}
		}
		if err := deps.Store.SaveEmbeddings(ctx, embs); err != nil {
			return err
		}
	}

	// Mark document ready
	if err := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusReady); err != nil {
		return err
	}

	// Stale cached answers must not survive a reprocessed document.
	if err := deps.Cache.InvalidateDocument(ctx, docID.String()); err != nil {
		deps.Log.Warn("failed to invalidate query cache", "document_id", docID, "err", err)
	}
	return nil
}

// concatenateChunks combines all chunk texts into a single string for summarization.
func concatenateChunks(chunks []store.Chunk) string {
	var builder strings.Builder
	for _, c := range chunks {
		builder.WriteString(c.Content)
		builder.WriteString("\n")
	}
	return builder.String()
}
