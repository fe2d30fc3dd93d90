package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubCollector struct {
	mu    sync.Mutex
	calls int
	times []time.Time
	block chan struct{}
	err   error
}

func (s *stubCollector) RunOnce(ctx context.Context, now time.Time) (domain.RunResult, error) {
	s.mu.Lock()
	s.calls++
	s.times = append(s.times, now)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return domain.RunResult{HistoryAppended: 4}, s.err
}

func (s *stubCollector) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNewCollectorJobDefaultsSchedule(t *testing.T) {
	j, err := NewCollectorJob(testTracer, &stubCollector{}, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.schedule != DefaultSchedule {
		t.Fatalf("expected default schedule, got %q", j.schedule)
	}
}

func TestNewCollectorJobRejectsBadSchedule(t *testing.T) {
	if _, err := NewCollectorJob(testTracer, &stubCollector{}, "every half hour", false); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestCollectorJobRunOnceUsesClock(t *testing.T) {
	stub := &stubCollector{err: errors.New("boom")}
	j, _ := NewCollectorJob(testTracer, stub, "", false)
	fixed := time.Date(2023, 1, 5, 12, 30, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	j.runOnce(context.Background())

	if stub.callCount() != 1 || !stub.times[0].Equal(fixed) {
		t.Fatalf("unexpected calls: %d %v", stub.calls, stub.times)
	}
}

func TestCollectorJobSkipsOverlappingRun(t *testing.T) {
	stub := &stubCollector{block: make(chan struct{})}
	j, _ := NewCollectorJob(testTracer, stub, "", false)

	done := make(chan struct{})
	go func() {
		j.runOnce(context.Background())
		close(done)
	}()
	eventually(t, func() bool { return stub.callCount() == 1 })

	j.runOnce(context.Background())
	if stub.callCount() != 1 {
		t.Fatalf("expected overlapping run to be skipped, got %d calls", stub.callCount())
	}
	if _, err := j.RunOnce(context.Background(), time.Now()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}

	close(stub.block)
	<-done
}

func TestCollectorJobStartRunsOnStart(t *testing.T) {
	t.Parallel()

	stub := &stubCollector{}
	j, _ := NewCollectorJob(testTracer, stub, "0 0 1 1 *", true)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(stopped)
	}()

	eventually(t, func() bool { return stub.callCount() > 0 })
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
