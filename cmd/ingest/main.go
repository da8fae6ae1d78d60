package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"doc-ingest/internal/app"
	"doc-ingest/internal/httputil"
	"doc-ingest/internal/queue"
	"doc-ingest/internal/splitter"
	"doc-ingest/internal/store"
	"doc-ingest/internal/tokenizer"
)

type chunkTaskPayload struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
}

// worker holds the ingest pipeline's fixed pieces: the chunking config and
// the token counter are resolved once at startup.
type worker struct {
	deps     app.Deps
	splitCfg splitter.Config
	count    splitter.TokenCounter
}

func main() {
	deps, err := app.Build("ingest")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	splitCfg, err := splitter.NewConfig(deps.Config.ChunkSize, deps.Config.ChunkOverlap, deps.Config.MinChunkSize)
	if err != nil {
		deps.Log.Error("invalid chunking config", "err", err)
		os.Exit(1)
	}

	count, err := tokenizer.NewTiktoken(deps.Config.TokenEncoding)
	if err != nil {
		deps.Log.Warn("tokenizer unavailable; falling back to word counting", "encoding", deps.Config.TokenEncoding, "err", err)
		count = tokenizer.WordCount
	}

	w := &worker{deps: deps, splitCfg: splitCfg, count: count}
	deps.Log.Info("ingest worker starting",
		"chunk_size", splitCfg.ChunkSize,
		"chunk_overlap", splitCfg.ChunkOverlap,
		"min_chunk_size", splitCfg.MinChunkSize,
	)

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeChunk, func(ctx context.Context, task queue.Task) error {
			var payload chunkTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return w.handleChunk(ctx, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.HealthPort, "ingest")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("ingest service stopped", "err", err)
	}
}

func (w *worker) handleChunk(ctx context.Context, payload chunkTaskPayload) error {
	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return err
	}
	log := w.deps.Log.With("document_id", docID)

	chunks := splitter.Split(payload.Text, w.splitCfg, w.count)
	frags := splitter.Fragments(chunks, w.splitCfg, w.count)

	// A document whose text produced nothing above the minimum size is a
	// terminal condition, not a retryable failure.
	if len(frags) == 0 {
		log.Warn("no usable content after chunking", "filename", payload.Filename)
		if err := w.deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); err != nil {
			log.Error("failed to mark document failed", "err", err)
		}
		return nil
	}

	storeChunks := make([]store.Chunk, 0, len(frags))
	for _, f := range frags {
		storeChunks = append(storeChunks, store.Chunk{
			Index:      f.Index,
			Content:    f.Content,
			TokenCount: f.TokenCount,
			CharCount:  f.CharCount,
		})
	}
	chunksWithIDs, err := w.deps.Store.SaveChunks(ctx, docID, storeChunks)
	if err != nil {
		return err
	}
	log.Info("document chunked", "chunks", len(chunksWithIDs))

	// Enqueue analysis task with chunk ids.
	chunkIDs := make([]uuid.UUID, 0, len(chunksWithIDs))
	for _, c := range chunksWithIDs {
		chunkIDs = append(chunkIDs, c.ID)
	}
	body, err := json.Marshal(map[string]any{
		"document_id": docID.String(),
		"chunk_ids":   chunkIDs,
	})
	if err != nil {
		return err
	}
	task := queue.Task{Type: queue.TaskTypeAnalyze, Payload: body, NotBefore: time.Now()}
	return queue.EnqueueWithRetry(ctx, w.deps.Queue, task, 3, 200*time.Millisecond)
}
