package feed

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/tradesignal/newsradar/internal/observ"
)

// RSSSource reads one or more public RSS feeds. It needs no credentials
// and usually sits last in the priority order as the free fallback.
type RSSSource struct {
	feedURLs    []string
	parser      *gofeed.Parser
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

type RSSConfig struct {
	FeedURLs        []string
	TimeoutSeconds  int
	RateLimitPerMin int
}

func NewRSSSource(cfg RSSConfig) *RSSSource {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 30
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "newsradar/1.0"
	return &RSSSource{
		feedURLs:    cfg.FeedURLs,
		parser:      parser,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60), 2),
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (r *RSSSource) Name() string { return "rss" }

// FetchSince pulls every configured feed and keeps items published at or
// after since. A feed that fails to parse is skipped; the fetch only fails
// when every feed failed.
func (r *RSSSource) FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error) {
	if len(r.feedURLs) == 0 {
		return nil, NewNotConfiguredError("rss")
	}

	var items []NewsItem
	failures := 0
	var lastErr error

	for _, feedURL := range r.feedURLs {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return nil, NewUnavailableError("rss", "rate limit wait cancelled", err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		parsed, err := r.parser.ParseURLWithContext(feedURL, fetchCtx)
		cancel()
		if err != nil {
			failures++
			lastErr = err
			observ.LogError("rss_feed_error", err, map[string]any{"feed": feedURL})
			continue
		}

		for _, it := range parsed.Items {
			if it.Title == "" {
				continue
			}
			published := time.Now().UTC()
			if it.PublishedParsed != nil {
				published = it.PublishedParsed.UTC()
			}
			if published.Before(since) {
				continue
			}
			items = append(items, NewsItem{
				Headline:    it.Title,
				Source:      "rss",
				PublishedAt: published,
				URL:         it.Link,
			})
		}
	}

	if failures == len(r.feedURLs) {
		return nil, NewUnavailableError("rss", "all feeds failed", lastErr)
	}
	return items, nil
}
