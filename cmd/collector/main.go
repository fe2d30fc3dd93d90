package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptobook/internal/app"
	"cryptobook/internal/cache"
	"cryptobook/internal/config"
	"cryptobook/internal/db"
	"cryptobook/internal/job"
	"cryptobook/pkg/tracing"

	"github.com/joho/godotenv"
)

const (
	cmdOnce     = "once"
	cmdSchedule = "schedule"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newCollectorFunc  = app.NewCollector
	setupSignalNotify = signal.Notify
	nowFunc           = func() time.Time { return time.Now().UTC() }
)

func main() {
	loadEnvFunc()

	cmd := cmdOnce
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Stopping collector...")
		cancel()
	}()

	if err := run(ctx, cmd); err != nil {
		log.Fatalf("collector: %v", err)
	}
}

func run(ctx context.Context, cmd string) error {
	if cmd != cmdOnce && cmd != cmdSchedule {
		return fmt.Errorf("usage: go run ./cmd/collector [%s|%s]", cmdOnce, cmdSchedule)
	}

	cfg := loadConfigFunc()

	tp, tracer, err := initTracerFunc(ctx, "cryptobook-collector")
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	var backends app.Backends
	if pool, err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("Warning: postgres unavailable, mirror disabled: %v", err)
	} else {
		backends.Pool = pool
	}
	defer db.Close()
	if client, err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.Printf("Warning: redis unavailable, quote cache disabled: %v", err)
	} else {
		backends.Redis = client
	}

	collector, err := newCollectorFunc(ctx, cfg, tracer, backends)
	if err != nil {
		return err
	}

	if cmd == cmdOnce {
		result, err := collector.RunOnce(ctx, nowFunc())
		log.Printf("Collector run: %d quotes, %d history rows, %d posts, %d sentiment rows",
			result.QuotesParsed, result.HistoryAppended, result.PostsFetched, result.SentimentRows)
		return err
	}

	collectorJob, err := job.NewCollectorJob(tracer, collector, cfg.CollectSchedule, cfg.CollectOnStart)
	if err != nil {
		return err
	}
	log.Printf("Collector scheduled: %s", cfg.CollectSchedule)
	collectorJob.Start(ctx)
	return nil
}
