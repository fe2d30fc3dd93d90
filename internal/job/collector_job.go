package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cryptobook/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultSchedule = "*/30 * * * *"

var ErrRunInProgress = errors.New("collector run already in progress")

type Collector interface {
	RunOnce(ctx context.Context, now time.Time) (domain.RunResult, error)
}

// CollectorJob runs the collector on a cron schedule inside a long lived
// process. A tick that fires while a run is in progress is skipped.
type CollectorJob struct {
	tracer     trace.Tracer
	collector  Collector
	schedule   string
	runOnStart bool
	now        func() time.Time

	mu sync.Mutex
}

func NewCollectorJob(tracer trace.Tracer, collector Collector, schedule string, runOnStart bool) (*CollectorJob, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid collect schedule %q: %w", schedule, err)
	}
	return &CollectorJob{
		tracer:     tracer,
		collector:  collector,
		schedule:   schedule,
		runOnStart: runOnStart,
		now:        time.Now,
	}, nil
}

// Start blocks until ctx is cancelled, then waits for a running collection
// to finish.
func (j *CollectorJob) Start(ctx context.Context) {
	log.Printf("Collector job starting (schedule %q)...", j.schedule)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))))
	if _, err := c.AddFunc(j.schedule, func() { j.runOnce(ctx) }); err != nil {
		log.Printf("collector job schedule error: %v", err)
		return
	}
	c.Start()

	var wg sync.WaitGroup
	if j.runOnStart {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.runOnce(ctx)
		}()
	}

	<-ctx.Done()
	<-c.Stop().Done()
	wg.Wait()
	log.Println("Collector job stopped")
}

func (j *CollectorJob) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := j.RunOnce(ctx, j.now().UTC()); err != nil {
		log.Printf("collector run error: %v", err)
	}
}

// RunOnce runs the collector unless a run is already in progress, in which
// case it returns ErrRunInProgress.
func (j *CollectorJob) RunOnce(ctx context.Context, now time.Time) (domain.RunResult, error) {
	if !j.mu.TryLock() {
		return domain.RunResult{}, ErrRunInProgress
	}
	defer j.mu.Unlock()

	ctx, span := j.tracer.Start(ctx, "collector-job.run")
	defer span.End()

	res, err := j.collector.RunOnce(ctx, now)
	span.SetAttributes(
		attribute.Int("history_appended", res.HistoryAppended),
		attribute.Int("sentiment_rows", res.SentimentRows),
	)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}
