package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tradesignal/newsradar/internal/dedup"
	"github.com/tradesignal/newsradar/internal/feed"
	"github.com/tradesignal/newsradar/internal/match"
	"github.com/tradesignal/newsradar/internal/sentiment"
	"github.com/tradesignal/newsradar/internal/watchlist"
)

// blockingSource parks FetchSince until release is closed, so a test can
// hold a cycle open while it probes the scheduler.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) FetchSince(ctx context.Context, since time.Time) ([]feed.NewsItem, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return nil, nil
	case <-ctx.Done():
		return nil, feed.NewUnavailableError("blocking", "context cancelled", ctx.Err())
	}
}

func newBlockedScheduler(src feed.NewsSource) *Scheduler {
	orch := NewOrchestrator(
		feed.NewManager([]feed.NewsSource{src}, nil),
		sentiment.NewScorer(0.5),
		match.NewMatcher(),
		dedup.NewWindow(100),
		&fakeDispatcher{},
		&fakeSink{},
		watchlist.New([]string{"AAPL"}),
		OrchestratorConfig{},
	)
	return NewScheduler(orch, time.Hour)
}

func TestTriggerScanSingleFlight(t *testing.T) {
	src := newBlockingSource()
	sched := newBlockedScheduler(src)

	if got := sched.TriggerScan(); got != TriggerStarted {
		t.Fatalf("first trigger = %v, want %v", got, TriggerStarted)
	}

	select {
	case <-src.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never reached the news source")
	}

	// the guard is held for as long as the fetch blocks
	if got := sched.TriggerScan(); got != TriggerAlreadyRunning {
		t.Errorf("overlapping trigger = %v, want %v", got, TriggerAlreadyRunning)
	}
	if !sched.Status().Running {
		t.Error("Status().Running = false while a cycle is in flight")
	}

	close(src.release)

	deadline := time.Now().Add(2 * time.Second)
	for sched.Status().Running {
		if time.Now().After(deadline) {
			t.Fatal("running flag never cleared after the cycle finished")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := sched.TriggerScan(); got != TriggerStarted {
		t.Errorf("trigger after completion = %v, want %v", got, TriggerStarted)
	}
}

type panickingSource struct{}

func (panickingSource) Name() string { return "panicking" }

func (panickingSource) FetchSince(ctx context.Context, since time.Time) ([]feed.NewsItem, error) {
	panic("provider bug")
}

func TestSchedulerSurvivesPanickingCycle(t *testing.T) {
	sched := newBlockedScheduler(panickingSource{})

	if got := sched.TriggerScan(); got != TriggerStarted {
		t.Fatalf("trigger = %v, want %v", got, TriggerStarted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sched.Status().Running {
		if time.Now().After(deadline) {
			t.Fatal("running flag never cleared after a panicking cycle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// the guard must be free again; a wedged scheduler would report
	// already-running forever
	if got := sched.TriggerScan(); got != TriggerStarted {
		t.Errorf("trigger after panic = %v, want %v", got, TriggerStarted)
	}
}

func TestSchedulerRecordsLastResult(t *testing.T) {
	news := feed.NewMockNewsSource("mock")
	sched := newBlockedScheduler(news)

	if got := sched.TriggerScan(); got != TriggerStarted {
		t.Fatalf("trigger = %v, want %v", got, TriggerStarted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := sched.Status()
		if !st.Running && st.LastResult != nil {
			if st.LastScanAt.IsZero() {
				t.Error("LastScanAt not recorded")
			}
			if st.LastResult.Degraded {
				t.Errorf("cycle degraded: %v", st.LastResult.Error)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler never recorded a result")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
