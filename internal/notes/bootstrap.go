package notes

import (
	"context"
	"fmt"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/assistant"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/cache"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/database"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/queue"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/storage"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/webhook"
)

// Components holds the long-lived clients behind a Service. Cache, Storage
// and Queue are nil when unavailable or disabled.
type Components struct {
	DB      *database.DB
	Repo    *database.Repository
	Cache   *cache.Cache
	Storage *storage.Storage
	Queue   *queue.Queue
	Service *Service
}

// Bootstrap connects every backend named in cfg and builds the Service.
// Postgres is required; Redis, object storage and the queue degrade to
// disabled features when they cannot be reached.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Components, error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c := &Components{
		DB:   db,
		Repo: database.NewRepository(db),
	}

	if rc, err := cache.NewCache(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable: transcript cache, quotas and async jobs disabled")
	} else {
		c.Cache = rc
	}

	if cfg.Storage.Enabled {
		if st, err := storage.New(ctx, cfg.Storage, logger); err != nil {
			logger.WithError(err).Warn("Object storage unavailable: note export disabled")
		} else {
			c.Storage = st
		}
	}

	if cfg.Queue.Enabled {
		if q, err := queue.New(cfg.Queue, logger); err != nil {
			logger.WithError(err).Warn("Queue unavailable: async note generation disabled")
		} else {
			c.Queue = q
		}
	}

	transcripts, err := transcript.NewService(ctx, cfg.Transcript, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	summary := assistant.NewLLMCompleter(cfg.LLM, cfg.LLM.Model)
	var chat assistant.Completer
	if cfg.LLM.ChatModel != "" && cfg.LLM.ChatModel != cfg.LLM.Model {
		chat = assistant.NewLLMCompleter(cfg.LLM, cfg.LLM.ChatModel)
	}
	asst := assistant.New(summary, chat, assistant.Options{
		Model:              cfg.LLM.Model,
		ChatModel:          cfg.LLM.ChatModel,
		MaxTokens:          cfg.LLM.MaxTokens,
		SummaryTemperature: cfg.LLM.SummaryTemperature,
		ChatTemperature:    cfg.LLM.ChatTemperature,
		MaxTranscriptChars: cfg.LLM.MaxTranscriptChars,
		MaxChatContext:     cfg.LLM.MaxChatContext,
	}, logger)

	deps := Deps{
		Resolver:  transcripts.Resolver,
		Metadata:  transcripts.Metadata,
		Assistant: asst,
		Store:     c.Repo,
		Notifier:  webhook.NewService(cfg.Webhook, logger),
		Logger:    logger,
	}
	// Only set when present: a typed nil would defeat the nil checks
	if c.Cache != nil {
		deps.Cache = c.Cache
	}
	if c.Storage != nil {
		deps.Exporter = c.Storage
	}
	if c.Queue != nil {
		deps.Publisher = c.Queue
	}

	svc, err := NewService(deps)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Service = svc

	return c, nil
}

// Close releases every connection held by c
func (c *Components) Close() {
	if c.Queue != nil {
		c.Queue.Close()
	}
	if c.Cache != nil {
		c.Cache.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
