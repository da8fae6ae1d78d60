package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"doc-ingest/internal/app"
	"doc-ingest/internal/config"
	"doc-ingest/internal/queue"
	"doc-ingest/internal/splitter"
	"doc-ingest/internal/store"
	"doc-ingest/internal/tokenizer"
)

func newTestWorker(st store.Store, q queue.Queue, chunkSize, overlap, minChunk int) *worker {
	cfg, err := splitter.NewConfig(chunkSize, overlap, minChunk)
	if err != nil {
		panic(err)
	}
	return &worker{
		deps: app.Deps{
			Store:  st,
			Queue:  q,
			Config: config.Config{},
			Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		splitCfg: cfg,
		count:    tokenizer.WordCount,
	}
}

func TestHandleChunk(t *testing.T) {
	validDocID := uuid.New()

	tests := []struct {
		name    string
		payload chunkTaskPayload
		setup   func(*store.MockStore, *queue.MockQueue)
		wantErr bool
	}{
		{
			name: "successful chunking with small text",
			payload: chunkTaskPayload{
				DocumentID: validDocID.String(),
				Filename:   "test.txt",
				Text:       "This is a short test document.",
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SaveChunks", mock.Anything, validDocID, mock.MatchedBy(func(chunks []store.Chunk) bool {
					return len(chunks) == 1 && chunks[0].Index == 0 && chunks[0].TokenCount > 0
				})).Return([]store.Chunk{{ID: uuid.New(), DocumentID: validDocID}}, nil).Once()

				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					if task.Type != queue.TaskTypeAnalyze {
						return false
					}
					var payload map[string]any
					json.Unmarshal(task.Payload, &payload)
					return payload["document_id"] == validDocID.String()
				})).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "long text creates multiple chunks",
			payload: chunkTaskPayload{
				DocumentID: validDocID.String(),
				Filename:   "long.txt",
				Text:       generateLongText(500),
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SaveChunks", mock.Anything, validDocID, mock.MatchedBy(func(chunks []store.Chunk) bool {
					return len(chunks) > 1
				})).Return([]store.Chunk{{ID: uuid.New()}, {ID: uuid.New()}}, nil).Once()

				q.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "invalid document ID returns error",
			payload: chunkTaskPayload{
				DocumentID: "invalid-uuid",
				Filename:   "test.txt",
				Text:       "Test content",
			},
			setup:   func(s *store.MockStore, q *queue.MockQueue) {},
			wantErr: true,
		},
		{
			name: "store SaveChunks failure propagates error",
			payload: chunkTaskPayload{
				DocumentID: validDocID.String(),
				Filename:   "test.txt",
				Text:       "Test content",
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SaveChunks", mock.Anything, validDocID, mock.Anything).
					Return(nil, errors.New("database error")).Once()
				// Enqueue should NOT be called
			},
			wantErr: true,
		},
		{
			name: "queue enqueue failure returns error",
			payload: chunkTaskPayload{
				DocumentID: validDocID.String(),
				Filename:   "test.txt",
				Text:       "Test content",
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SaveChunks", mock.Anything, validDocID, mock.Anything).
					Return([]store.Chunk{{ID: uuid.New()}}, nil).Once()

				// Enqueue fails (may be retried)
				q.On("Enqueue", mock.Anything, mock.Anything).
					Return(errors.New("queue error"))
			},
			wantErr: true,
		},
		{
			name: "empty text marks document failed without error",
			payload: chunkTaskPayload{
				DocumentID: validDocID.String(),
				Filename:   "empty.txt",
				Text:       "",
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("UpdateDocumentStatus", mock.Anything, validDocID, store.StatusFailed).
					Return(nil).Once()
				// SaveChunks and Enqueue should NOT be called
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create fresh mocks for each test
			mockStore := new(store.MockStore)
			mockQueue := new(queue.MockQueue)

			// Setup expectations
			if tt.setup != nil {
				tt.setup(mockStore, mockQueue)
			}

			w := newTestWorker(mockStore, mockQueue, 50, 10, 1)

			// Execute
			err := w.handleChunk(context.Background(), tt.payload)

			// Check error expectation
			if (err != nil) != tt.wantErr {
				t.Errorf("handleChunk() error = %v, wantErr %v", err, tt.wantErr)
			}

			// Assert all expectations were met
			mockStore.AssertExpectations(t)
			mockQueue.AssertExpectations(t)
		})
	}
}

func TestHandleChunkFiltersShortFragments(t *testing.T) {
	validDocID := uuid.New()
	mockStore := new(store.MockStore)
	mockQueue := new(queue.MockQueue)

	// Every produced fragment is shorter than the minimum, so the document
	// ends up failed rather than stored.
	mockStore.On("UpdateDocumentStatus", mock.Anything, validDocID, store.StatusFailed).
		Return(nil).Once()

	w := newTestWorker(mockStore, mockQueue, 50, 10, 200)

	err := w.handleChunk(context.Background(), chunkTaskPayload{
		DocumentID: validDocID.String(),
		Filename:   "tiny.txt",
		Text:       "too short to keep.",
	})
	if err != nil {
		t.Fatalf("handleChunk() error = %v", err)
	}

	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "SaveChunks", mock.Anything, mock.Anything, mock.Anything)
	mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

// generateLongText creates text of approximately the specified word count.
func generateLongText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		b.WriteString("word ")
	}
	return b.String()
}
