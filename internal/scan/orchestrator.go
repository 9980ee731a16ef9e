package scan

import (
	"context"
	"sync"
	"time"

	"github.com/tradesignal/newsradar/internal/alerts"
	"github.com/tradesignal/newsradar/internal/dedup"
	"github.com/tradesignal/newsradar/internal/feed"
	"github.com/tradesignal/newsradar/internal/match"
	"github.com/tradesignal/newsradar/internal/observ"
	"github.com/tradesignal/newsradar/internal/sentiment"
	"github.com/tradesignal/newsradar/internal/strategy"
	"github.com/tradesignal/newsradar/internal/watchlist"
)

// Dispatcher delivers one alert to the configured recipients.
type Dispatcher interface {
	Deliver(ctx context.Context, rec alerts.Record, recipients []string) []alerts.DeliveryResult
}

// LogSink receives finalized alerts; the orchestrator never reads back.
type LogSink interface {
	Append(rec alerts.Record) error
}

// Result summarizes one completed cycle for the status endpoint.
type Result struct {
	StartedAt        time.Time `json:"started_at"`
	DurationMs       int64     `json:"duration_ms"`
	Provider         string    `json:"provider,omitempty"`
	ItemsFetched     int       `json:"items_fetched"`
	Matched          int       `json:"matched"`
	Suppressed       int       `json:"suppressed"`
	AlertsDispatched int       `json:"alerts_dispatched"`
	DeliveryFailures int       `json:"delivery_failures"`
	Degraded         bool      `json:"degraded"`
	Error            string    `json:"error,omitempty"`
}

// Orchestrator runs one scan cycle: snapshot the watchlist, fetch news
// with provider fallback, match and score each item, synthesize setups
// for non-neutral matches, dedup, then dispatch and log admitted alerts.
// Failures are contained per source, per item, and per recipient; a
// cycle always runs to completion.
type Orchestrator struct {
	feeds      *feed.Manager
	scorer     *sentiment.Scorer
	matcher    *match.Matcher
	window     *dedup.Window
	dispatcher Dispatcher
	sink       LogSink
	watch      *watchlist.Watchlist
	recipients []string
	setupCfg   strategy.Config
	lookback   time.Duration
	timeout    time.Duration

	mu        sync.Mutex
	highWater time.Time // publish time reached by the last successful fetch
}

type OrchestratorConfig struct {
	Recipients      []string
	Setup           strategy.Config
	LookbackMinutes int
	TimeoutSeconds  int
}

func NewOrchestrator(
	feeds *feed.Manager,
	scorer *sentiment.Scorer,
	matcher *match.Matcher,
	window *dedup.Window,
	dispatcher Dispatcher,
	sink LogSink,
	watch *watchlist.Watchlist,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.LookbackMinutes <= 0 {
		cfg.LookbackMinutes = 30
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	return &Orchestrator{
		feeds:      feeds,
		scorer:     scorer,
		matcher:    matcher,
		window:     window,
		dispatcher: dispatcher,
		sink:       sink,
		watch:      watch,
		recipients: cfg.Recipients,
		setupCfg:   cfg.Setup,
		lookback:   time.Duration(cfg.LookbackMinutes) * time.Minute,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (o *Orchestrator) RunCycle(ctx context.Context) Result {
	start := time.Now()
	result := Result{StartedAt: start.UTC()}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	tickers := o.watch.Snapshot()
	since := o.sinceTime(start)

	items, provider, err := o.feeds.FetchNews(ctx, since)
	if err != nil {
		// every news source down: degraded cycle, zero alerts, no crash
		result.Degraded = true
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		observ.IncCounter("scan_cycles_total", map[string]string{"outcome": "degraded"})
		observ.LogError("scan_degraded", err, map[string]any{"since": since.UTC().Format(time.RFC3339)})
		return result
	}
	result.Provider = provider
	result.ItemsFetched = len(items)

	o.advanceHighWater(start, items)

	// quotes are fetched at most once per ticker per cycle
	quoteCache := map[string]*feed.Quote{}

	for _, item := range items {
		matched := o.matcher.Match(item.Headline, tickers)
		if len(matched) == 0 {
			continue
		}

		res := o.scorer.Score(item.Headline)
		if res.Direction == sentiment.Neutral {
			observ.IncCounter("items_neutral_total", nil)
			continue
		}
		result.Matched += len(matched)

		for _, ticker := range matched {
			o.processMatch(ctx, item, ticker, res, quoteCache, &result)
		}
	}

	result.DurationMs = time.Since(start).Milliseconds()
	observ.IncCounter("scan_cycles_total", map[string]string{"outcome": "ok"})
	observ.Observe("scan_duration_ms", float64(result.DurationMs), nil)
	observ.Log("scan_complete", map[string]any{
		"provider":          provider,
		"items":             result.ItemsFetched,
		"matched":           result.Matched,
		"suppressed":        result.Suppressed,
		"alerts":            result.AlertsDispatched,
		"delivery_failures": result.DeliveryFailures,
		"duration_ms":       result.DurationMs,
	})
	return result
}

// processMatch runs the per-(item, ticker) tail of the pipeline. Each
// pair is handled independently; the dedup window is the only coalescing
// mechanism for a ticker hit by several headlines in one cycle.
func (o *Orchestrator) processMatch(
	ctx context.Context,
	item feed.NewsItem,
	ticker string,
	res sentiment.Result,
	quoteCache map[string]*feed.Quote,
	result *Result,
) {
	quote, cached := quoteCache[ticker]
	if !cached {
		q, err := o.feeds.FetchQuote(ctx, ticker)
		if err != nil {
			observ.LogError("quote_unavailable", err, map[string]any{"ticker": ticker})
			q = nil // synthesizer degrades to ATM
		}
		quote = q
		quoteCache[ticker] = quote
	}

	setup := strategy.Synthesize(ticker, res, quote, o.setupCfg)
	fingerprint := dedup.Fingerprint(item.Headline, ticker)
	rec := alerts.NewRecord(ticker, item.Headline, item.Source, res.Score, setup, fingerprint)

	if !o.window.Admit(fingerprint) {
		result.Suppressed++
		observ.IncCounter("alerts_suppressed_total", map[string]string{"ticker": ticker})
		observ.Log("duplicate_suppressed", map[string]any{"ticker": ticker, "fingerprint": fingerprint})
		return
	}

	deliveries := o.dispatcher.Deliver(ctx, rec, o.recipients)
	for _, d := range deliveries {
		if !d.Delivered {
			result.DeliveryFailures++
		}
	}
	result.AlertsDispatched++
	observ.IncCounter("alerts_dispatched_total", map[string]string{"ticker": ticker, "direction": string(res.Direction)})

	if err := o.sink.Append(rec); err != nil {
		observ.LogError("alert_log_append_failed", err, map[string]any{"id": rec.ID})
	}
}

// sinceTime returns the fetch horizon: the last successful cycle's
// high-water mark, or the fixed lookback window on first run.
func (o *Orchestrator) sinceTime(now time.Time) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.highWater.IsZero() {
		return now.Add(-o.lookback)
	}
	return o.highWater
}

func (o *Orchestrator) advanceHighWater(scanStart time.Time, items []feed.NewsItem) {
	mark := scanStart
	for _, it := range items {
		if it.PublishedAt.After(mark) {
			mark = it.PublishedAt
		}
	}
	o.mu.Lock()
	if mark.After(o.highWater) {
		o.highWater = mark
	}
	o.mu.Unlock()
}
