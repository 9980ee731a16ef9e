package feed

import (
	"context"
	"time"

	"github.com/tradesignal/newsradar/internal/observ"
)

// Manager owns the priority-ordered fallback across providers for both
// data classes. Within one scan cycle the first source that answers wins
// and the rest are skipped for that class.
type Manager struct {
	news   []NewsSource
	quotes []QuoteSource
}

func NewManager(news []NewsSource, quotes []QuoteSource) *Manager {
	return &Manager{news: news, quotes: quotes}
}

// FetchNews tries each news source in priority order and returns the
// items from the first one that succeeds, along with its provider name.
// Zero items from a healthy source is a success, not a reason to fall
// through. When every source fails the last *SourceError is returned.
func (m *Manager) FetchNews(ctx context.Context, since time.Time) ([]NewsItem, string, error) {
	var lastErr error
	for _, src := range m.news {
		items, err := src.FetchSince(ctx, since)
		if err != nil {
			lastErr = err
			observ.IncCounter("news_source_errors_total", map[string]string{"provider": src.Name()})
			observ.LogError("news_source_fallback", err, map[string]any{"provider": src.Name()})
			continue
		}
		observ.IncCounter("news_fetches_total", map[string]string{"provider": src.Name()})
		return items, src.Name(), nil
	}
	if lastErr == nil {
		lastErr = NewNotConfiguredError("news")
	}
	return nil, "", lastErr
}

// FetchQuote tries each quote source in priority order. A nil quote with
// nil error never happens; callers treat any error as "no quote" and
// degrade to symbolic strike fields.
func (m *Manager) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	var lastErr error
	for _, src := range m.quotes {
		quote, err := src.GetQuote(ctx, symbol)
		if err != nil {
			lastErr = err
			observ.IncCounter("quote_source_errors_total", map[string]string{"provider": src.Name()})
			continue
		}
		if err := ValidateQuote(quote); err != nil {
			lastErr = NewBadResponseError(src.Name(), "invalid quote", err)
			continue
		}
		observ.IncCounter("quote_fetches_total", map[string]string{"provider": src.Name()})
		return quote, nil
	}
	if lastErr == nil {
		lastErr = NewNotConfiguredError("quotes")
	}
	return nil, lastErr
}
