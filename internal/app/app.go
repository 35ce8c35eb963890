// Package app wires configuration, storage, retrieval, and generation into
// a running application. Commands depend on app instead of assembling the
// object graph themselves.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soren0/counsel/internal/article"
	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/conversation"
	"github.com/soren0/counsel/internal/generation"
	"github.com/soren0/counsel/internal/knowledge"
	"github.com/soren0/counsel/internal/log"
	"github.com/soren0/counsel/internal/postgres"
	"github.com/soren0/counsel/internal/prompt"
	"github.com/soren0/counsel/internal/retrieval"
)

// App holds the initialized application components.
// Call Close to release resources.
type App struct {
	Config *config.Config
	Logger log.Logger

	Pool      *pgxpool.Pool
	Knowledge *knowledge.Store
	Articles  *article.Store
	Turns     *conversation.Store
	Service   *conversation.Service

	dbCleanup func()
}

// Setup creates and initializes the application.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	pool, dbCleanup, err := postgres.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	a.Pool = pool
	a.dbCleanup = dbCleanup

	a.Knowledge = knowledge.NewStore(pool, logger)
	a.Articles = article.NewStore(pool, logger)
	a.Turns = conversation.NewStore(pool, logger)

	retriever, err := provideRetriever(cfg, a.Knowledge, a.Articles, logger)
	if err != nil {
		return nil, err
	}

	generator, err := provideGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	builder := prompt.NewBuilder(cfg.MaxContextChars, logger)

	svc, err := conversation.New(conversation.Config{
		History:   a.Turns,
		Usage:     a.Knowledge,
		Retriever: retriever,
		Builder:   builder,
		Generator: generator,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating conversation service: %w", err)
	}
	a.Service = svc

	return a, nil
}

// Close releases all resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.dbCleanup != nil {
		a.dbCleanup()
	}
}

func provideRetriever(cfg *config.Config, k *knowledge.Store, art *article.Store, logger *slog.Logger) (*retrieval.Retriever, error) {
	r, err := retrieval.New(retrieval.Config{
		Knowledge:       k,
		Articles:        art,
		KnowledgeScorer: knowledge.NewScorer(knowledge.WeightsFromConfig(cfg.Scoring)),
		ArticleScorer:   article.NewScorer(article.WeightsFromConfig(cfg.Scoring)),
		TopKKnowledge:   cfg.TopKKnowledge,
		TopKArticles:    cfg.TopKArticles,
		MinScore:        cfg.MinScore,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating retriever: %w", err)
	}
	return r, nil
}

// provideGenerator builds the generation pipeline. Without an API key the
// generator answers every request with the deterministic fallback template.
func provideGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*generation.Generator, error) {
	var completer generation.Completer
	if cfg.GeminiAPIKey != "" {
		gc, err := generation.NewGemini(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		completer = gc
	} else {
		logger.Warn("GEMINI_API_KEY not set, answers will use the fallback template")
	}

	return generation.New(generation.Config{
		Completer: completer,
		Timeout:   time.Duration(cfg.GenerationTimeout) * time.Second,
		Logger:    logger,
	}), nil
}
