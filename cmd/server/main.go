package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptobook/internal/app"
	"cryptobook/internal/bot"
	"cryptobook/internal/cache"
	"cryptobook/internal/config"
	"cryptobook/internal/db"
	"cryptobook/internal/handler"
	"cryptobook/internal/job"
	"cryptobook/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "cryptobook/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newCollectorFunc       = app.NewCollector
	newAnalysisFunc        = app.NewAnalysis
	newCollectorJobFunc    = job.NewCollectorJob
	startJobFunc           = func(j *job.CollectorJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Cryptobook API
// @version         1.0
// @description     Market history and social sentiment of the top crypto assets.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "cryptobook-server")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Postgres and Redis are optional
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
		log.Fatalf("failed to build collector: %v", err)
	}
	collectorJob, err := newCollectorJobFunc(tracer, collector, cfg.CollectSchedule, cfg.CollectOnStart)
	if err != nil {
		log.Fatalf("failed to schedule collector: %v", err)
	}
	startJobFunc(collectorJob, ctx)

	analysis := newAnalysisFunc(cfg, tracer, backends)
	startTelegramBotFunc(cfg.TelegramBotToken, analysis)

	h := newHandlerFunc(tracer, analysis)
	h.SetCollectorRunner(collectorJob)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("cryptobook"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
