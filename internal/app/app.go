// Package app assembles the collector and analysis services from config.
package app

import (
	"context"
	"fmt"
	"log"

	"cryptobook/internal/config"
	"cryptobook/internal/provider"
	"cryptobook/internal/repository"
	"cryptobook/internal/sentiment"
	"cryptobook/internal/service"
	"cryptobook/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// Backends are the optional stores shared by the binaries. Either may be nil.
type Backends struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

func NewSearcher(cfg *config.Config, tracer trace.Tracer) service.SocialSearcher {
	if cfg.SocialSource == "twitter" && cfg.TwitterBearerToken != "" {
		return provider.NewTwitterProvider(tracer, cfg.TwitterBearerToken)
	}
	return provider.NewRedditProvider(tracer)
}

func NewTagger(cfg *config.Config, tracer trace.Tracer) *sentiment.Tagger {
	var llm sentiment.BatchScorer
	if c := sentiment.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel); c != nil {
		llm = c
	}
	return sentiment.NewTagger(sentiment.NewScorer(sentiment.NewLexiconClassifier(), llm, 0), tracer)
}

// NewCollector wires the scrape-and-tag pipeline. The Postgres mirror schema
// is created on the way.
func NewCollector(ctx context.Context, cfg *config.Config, tracer trace.Tracer, b Backends) (*service.CollectorService, error) {
	deps := service.CollectorDeps{
		Quotes:    provider.NewCryptoComProvider(tracer, cfg.ListingURL, cfg.ListingTableClass, cfg.CandidateRows),
		Searcher:  NewSearcher(cfg, tracer),
		Tagger:    NewTagger(cfg, tracer),
		History:   store.NewHistoryLog(cfg.HistoryPath, tracer),
		Sentiment: store.NewSentimentLog(cfg.SentimentPath, tracer),
		Posts:     store.NewPostLog(cfg.PostsPath, tracer),
	}
	if b.Pool != nil {
		mirror := repository.NewMirrorRepository(b.Pool, tracer)
		if err := mirror.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("mirror migrations: %w", err)
		}
		deps.Mirror = mirror
	}
	if b.Redis != nil {
		deps.Redis = b.Redis
	}

	log.Printf("Collector: top %d of %d rows from %s, sentiment via %T", cfg.TopN, cfg.CandidateRows, cfg.ListingURL, deps.Searcher)
	return service.NewCollectorService(tracer, service.CollectorConfig{
		TopN:       cfg.TopN,
		Window:     cfg.SentimentWindow,
		MaxResults: cfg.SentimentMaxResults,
	}, deps), nil
}

func NewAnalysis(cfg *config.Config, tracer trace.Tracer, b Backends) *service.AnalysisService {
	var cache service.RedisClient
	if b.Redis != nil {
		cache = b.Redis
	}
	return service.NewAnalysisService(
		tracer,
		store.NewHistoryLog(cfg.HistoryPath, tracer),
		store.NewSentimentLog(cfg.SentimentPath, tracer),
		cache,
	)
}
