package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tradesignal/newsradar/internal/alertlog"
	"github.com/tradesignal/newsradar/internal/alerts"
	"github.com/tradesignal/newsradar/internal/config"
	"github.com/tradesignal/newsradar/internal/dedup"
	"github.com/tradesignal/newsradar/internal/feed"
	"github.com/tradesignal/newsradar/internal/match"
	"github.com/tradesignal/newsradar/internal/observ"
	"github.com/tradesignal/newsradar/internal/scan"
	"github.com/tradesignal/newsradar/internal/sentiment"
	"github.com/tradesignal/newsradar/internal/strategy"
	"github.com/tradesignal/newsradar/internal/watchlist"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "config path")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load config: %v (did you copy config.example.yaml?)", err)
		}
		// env-only deployment is fine; everything has a default
		cfg = config.Default()
	}
	config.ApplyEnvOverrides(&cfg)

	observ.Log("startup", map[string]any{
		"scan_interval_min":   cfg.Scan.IntervalMinutes,
		"sentiment_threshold": cfg.Sentiment.Threshold,
		"watchlist":           cfg.Watchlist.Tickers,
		"news_priority":       cfg.News.Priority,
		"telegram_enabled":    cfg.Telegram.Enabled,
		"recipients":          len(cfg.Telegram.ChatIDs),
	})

	newsSources, quoteSources := buildSources(cfg)
	feeds := feed.NewManager(newsSources, quoteSources)

	scorer := sentiment.NewScorer(cfg.Sentiment.Threshold)
	matcher := match.NewMatcher()
	window := dedup.NewWindow(cfg.Dedup.WindowSize)
	watch := watchlist.New(cfg.Watchlist.Tickers)

	sink, err := alertlog.New(cfg.AlertLog.Path, cfg.AlertLog.MaxRecords)
	if err != nil {
		log.Fatalf("create alert log: %v", err)
	}

	var recipients []string
	if cfg.Telegram.Enabled {
		recipients = cfg.Telegram.ChatIDs
	}
	dispatcher := alerts.NewTelegramDispatcher(alerts.TelegramConfig{
		BotToken:       os.Getenv(cfg.Telegram.BotTokenEnv),
		TimeoutSeconds: cfg.Telegram.TimeoutSeconds,
		Policy: alerts.RetryPolicy{
			MaxAttempts: cfg.Telegram.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Telegram.BackoffBaseMs) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.Telegram.BackoffMaxMs) * time.Millisecond,
			JitterFrac:  0.1,
		},
	})

	orch := scan.NewOrchestrator(feeds, scorer, matcher, window, dispatcher, sink, watch, scan.OrchestratorConfig{
		Recipients: recipients,
		Setup: strategy.Config{
			ExpirationDays:   cfg.Strategy.ExpirationDays,
			ContractPricePct: cfg.Strategy.ContractPricePct,
		},
		LookbackMinutes: cfg.Scan.LookbackMinutes,
		TimeoutSeconds:  cfg.Scan.TimeoutSeconds,
	})

	scheduler := scan.NewScheduler(orch, time.Duration(cfg.Scan.IntervalMinutes)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("newsradar is running\n"))
	})
	mux.Handle("/health", observ.Health())
	mux.Handle("/metrics", observ.Handler())
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, scheduler.Status())
	})
	mux.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		outcome := scheduler.TriggerScan()
		writeJSON(w, map[string]string{"result": string(outcome)})
	})
	mux.HandleFunc("/alerts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sink.Recent())
	})
	mux.HandleFunc("/watchlist", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, watch.List())
		case http.MethodPost:
			ticker := r.URL.Query().Get("ticker")
			if ticker == "" {
				http.Error(w, "missing ticker", http.StatusBadRequest)
				return
			}
			if r.URL.Query().Get("action") == "remove" {
				writeJSON(w, map[string]bool{"removed": watch.Remove(ticker)})
				return
			}
			writeJSON(w, map[string]bool{"added": watch.Add(ticker)})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		observ.Log("http_listen", map[string]any{"addr": cfg.Server.Addr})
		errCh <- server.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		observ.Log("shutdown", map[string]any{"reason": "signal"})
	case err := <-errCh:
		log.Fatalf("http server: %v", err)
	}

	// stop the timer and wait out any in-flight cycle before draining HTTP
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		observ.LogError("http_shutdown_failed", err, nil)
	}
}

// buildSources constructs every provider in the configured priority
// order. Providers missing credentials are still registered: they fail
// as not-configured and the manager falls through to the next one.
func buildSources(cfg config.Root) ([]feed.NewsSource, []feed.QuoteSource) {
	polygon := feed.NewPolygonSource(feed.PolygonConfig{
		APIKey:          os.Getenv("POLYGON_API_KEY"),
		TimeoutSeconds:  cfg.Quotes.TimeoutSeconds,
		RateLimitPerMin: cfg.Quotes.RateLimitPerMin,
	})
	finnhub := feed.NewFinnhubSource(feed.FinnhubConfig{
		APIKey:          os.Getenv("FINNHUB_API_KEY"),
		TimeoutSeconds:  cfg.News.TimeoutSeconds,
		RateLimitPerMin: cfg.News.RateLimitPerMin,
	})
	marketaux := feed.NewMarketauxSource(feed.MarketauxConfig{
		APIKey:          os.Getenv("MARKETAUX_API_KEY"),
		TimeoutSeconds:  cfg.News.TimeoutSeconds,
		RateLimitPerMin: cfg.News.RateLimitPerMin,
	})
	rss := feed.NewRSSSource(feed.RSSConfig{
		FeedURLs:        cfg.News.RSSFeeds,
		TimeoutSeconds:  cfg.News.TimeoutSeconds,
		RateLimitPerMin: cfg.News.RateLimitPerMin,
	})

	newsByName := map[string]feed.NewsSource{
		"marketaux": marketaux,
		"polygon":   polygon,
		"finnhub":   finnhub,
		"rss":       rss,
	}
	quotesByName := map[string]feed.QuoteSource{
		"polygon": polygon,
		"finnhub": finnhub,
	}

	var news []feed.NewsSource
	for _, name := range cfg.News.Priority {
		if src, ok := newsByName[name]; ok {
			news = append(news, src)
		} else {
			observ.Log("unknown_news_source", map[string]any{"name": name})
		}
	}
	var quotes []feed.QuoteSource
	for _, name := range cfg.Quotes.Priority {
		if src, ok := quotesByName[name]; ok {
			quotes = append(quotes, src)
		} else {
			observ.Log("unknown_quote_source", map[string]any{"name": name})
		}
	}
	return news, quotes
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
