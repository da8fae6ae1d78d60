package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"doc-ingest/internal/cache"
	"doc-ingest/internal/config"
	"doc-ingest/internal/embeddings"
	"doc-ingest/internal/llm"
	"doc-ingest/internal/logger"
	"doc-ingest/internal/queue"
	"doc-ingest/internal/store"
)

// Deps bundles the runtime dependencies shared by the gateway and ingest
// services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
}

// AnalysisDeps extends Deps with the components the analysis worker needs.
type AnalysisDeps struct {
	Deps
	Embedder embeddings.Embedder
	LLM      llm.Client
	Cache    cache.Cache
}

// QueryDeps bundles what the query service needs; it consumes the store
// directly and never touches the queue.
type QueryDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Cache    cache.Cache
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// Build loads env, config, and the components used by gateway and ingest.
func Build(service string) (Deps, error) {
	loadEnv()
	cfg := config.Load()
	log := logger.NewService(service, cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Queue:  q,
	}, nil
}

// BuildAnalysis wires the analysis worker's dependencies.
func BuildAnalysis(service string) (AnalysisDeps, error) {
	base, err := Build(service)
	if err != nil {
		return AnalysisDeps{}, err
	}
	llmClient, err := buildLLM(base.Config, base.Log)
	if err != nil {
		return AnalysisDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(base.Config, base.Log)
	if err != nil {
		return AnalysisDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return AnalysisDeps{
		Deps:     base,
		Embedder: embedder,
		LLM:      llmClient,
		Cache:    buildCache(base.Config, base.Log),
	}, nil
}

// BuildQuery wires the query service's dependencies.
func BuildQuery(service string) (QueryDeps, error) {
	loadEnv()
	cfg := config.Load()
	log := logger.NewService(service, cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return QueryDeps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Cache:    buildCache(cfg, log),
		Embedder: embedder,
		LLM:      llmClient,
	}, nil
}

// loadEnv reads .env if present; a missing file is not an error in
// container deployments where config comes from the environment.
func loadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "err", err)
	}
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to a no-op cache when Redis is unavailable so
// services degrade to uncached behavior instead of refusing to start.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable; caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c
	default:
		log.Info("caching disabled")
		return cache.NewNoOpCache()
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}
