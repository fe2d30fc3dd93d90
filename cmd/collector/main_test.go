package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cryptobook/internal/app"
	"cryptobook/internal/config"
	"cryptobook/internal/domain"
	"cryptobook/internal/job"
	"cryptobook/internal/sentiment"
	"cryptobook/internal/service"
	"cryptobook/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type stubListing struct{}

func (stubListing) FetchQuotes(ctx context.Context) ([]domain.AssetQuote, error) {
	return []domain.AssetQuote{
		{Rank: 1, Name: "Bitcoin", Symbol: "BTC", Price: "$20,123.45", Change24h: "+1.5%", Volume24h: "$25.1 B", MarketCap: "$387.2 B"},
		{Rank: 2, Name: "Ethereum", Symbol: "ETH", Price: "$1,500.10", Change24h: "-0.4%", Volume24h: "$7.3 B", MarketCap: "$180 B"},
	}, nil
}

type stubSearch struct{}

func (stubSearch) Search(ctx context.Context, asset string, start, end time.Time, maxResults int) ([]domain.Post, error) {
	return []domain.Post{{CreatedAt: start, Text: asset + " rally", Crypto: asset}}, nil
}

func stubCollectorDeps(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		TopN:            2,
		HistoryPath:     filepath.Join(dir, "HistoryDF.csv"),
		SentimentPath:   filepath.Join(dir, "TwitterDF.csv"),
		PostsPath:       filepath.Join(dir, "Tweets.csv"),
		CollectSchedule: job.DefaultSchedule,
	}

	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewCollector := newCollectorFunc
	origNow := nowFunc
	t.Cleanup(func() {
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newCollectorFunc = origNewCollector
		nowFunc = origNow
	})

	loadConfigFunc = func() *config.Config { return cfg }
	initPostgresFunc = func(context.Context, string) (*pgxpool.Pool, error) { return nil, nil }
	initRedisFunc = func(context.Context, string) (*redis.Client, error) { return nil, nil }
	initTracerFunc = func(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newCollectorFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, b app.Backends) (*service.CollectorService, error) {
		return service.NewCollectorService(tracer, service.CollectorConfig{TopN: cfg.TopN}, service.CollectorDeps{
			Quotes:    stubListing{},
			Searcher:  stubSearch{},
			Tagger:    sentiment.NewTagger(nil, tracer),
			History:   store.NewHistoryLog(cfg.HistoryPath, tracer),
			Sentiment: store.NewSentimentLog(cfg.SentimentPath, tracer),
			Posts:     store.NewPostLog(cfg.PostsPath, tracer),
		}), nil
	}
	nowFunc = func() time.Time { return time.Date(2023, 1, 5, 12, 30, 0, 0, time.UTC) }
	return cfg
}

func TestRunOnceAppendsBothTables(t *testing.T) {
	cfg := stubCollectorDeps(t)
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	if err := run(context.Background(), cmdOnce); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, err := store.NewHistoryLog(cfg.HistoryPath, tracer).Load(context.Background())
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(table.Rows) != len(domain.Categories) {
		t.Fatalf("expected one row per category, got %d", len(table.Rows))
	}
	rows, err := store.NewSentimentLog(cfg.SentimentPath, tracer).Load(context.Background())
	if err != nil {
		t.Fatalf("load sentiment: %v", err)
	}
	if len(rows) != 2 || rows[0].Positive != 1 {
		t.Fatalf("unexpected sentiment rows: %+v", rows)
	}
	if _, err := os.Stat(cfg.PostsPath); err != nil {
		t.Fatalf("expected post snapshot: %v", err)
	}
}

func TestRunScheduleStopsWithContext(t *testing.T) {
	stubCollectorDeps(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, cmdSchedule) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), "backfill"); err == nil {
		t.Fatal("expected usage error")
	}
}
