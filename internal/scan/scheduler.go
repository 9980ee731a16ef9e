package scan

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tradesignal/newsradar/internal/observ"
)

// TriggerOutcome reports what a manual trigger did.
type TriggerOutcome string

const (
	TriggerStarted        TriggerOutcome = "started"
	TriggerAlreadyRunning TriggerOutcome = "already-running"
)

// Status is the health/status query surface.
type Status struct {
	Running      bool      `json:"running"`
	LastScanAt   time.Time `json:"last_scan_at"`
	LastResult   *Result   `json:"last_result,omitempty"`
	NextInterval string    `json:"interval"`
}

// Scheduler fires the orchestrator at a fixed interval and on manual
// request. Both paths share one single-flight guard: a trigger arriving
// while a cycle runs is logged and dropped, never queued.
type Scheduler struct {
	orch     *Orchestrator
	cron     *cron.Cron
	interval time.Duration
	running  atomic.Bool

	mu         sync.Mutex
	lastScanAt time.Time
	lastResult *Result
}

func NewScheduler(orch *Orchestrator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		orch:     orch,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start registers the interval job and starts the timer loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.run("timer")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	observ.Log("scheduler_started", map[string]any{"interval": s.interval.String()})
	return nil
}

// Stop halts the timer loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// TriggerScan requests an immediate cycle. The cycle runs in the
// background; the caller learns only whether it started.
func (s *Scheduler) TriggerScan() TriggerOutcome {
	if !s.running.CompareAndSwap(false, true) {
		observ.Log("scan_skipped", map[string]any{"trigger": "manual", "reason": "already_running"})
		return TriggerAlreadyRunning
	}
	go s.runLocked("manual")
	return TriggerStarted
}

// run is the timer entry point; it contends for the same guard as
// manual triggers.
func (s *Scheduler) run(trigger string) {
	if !s.running.CompareAndSwap(false, true) {
		observ.Log("scan_skipped", map[string]any{"trigger": trigger, "reason": "already_running"})
		return
	}
	s.runLocked(trigger)
}

// runLocked executes one cycle with the running flag held. The flag is
// released on every exit path, panics included, so a bad cycle can
// never wedge the scheduler.
func (s *Scheduler) runLocked(trigger string) {
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			observ.Log("scan_panic", map[string]any{"trigger": trigger, "panic": fmt.Sprint(r)})
			observ.IncCounter("scan_cycles_total", map[string]string{"outcome": "panic"})
		}
	}()

	observ.Log("scan_start", map[string]any{"trigger": trigger})
	result := s.orch.RunCycle(context.Background())

	s.mu.Lock()
	s.lastScanAt = result.StartedAt
	s.lastResult = &result
	s.mu.Unlock()
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:      s.running.Load(),
		LastScanAt:   s.lastScanAt,
		LastResult:   s.lastResult,
		NextInterval: s.interval.String(),
	}
}
