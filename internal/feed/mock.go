package feed

import (
	"context"
	"sync"
	"time"
)

// MockNewsSource provides deterministic headlines for testing.
type MockNewsSource struct {
	mu      sync.Mutex
	name    string
	items   []NewsItem
	err     error
	fetches int
}

func NewMockNewsSource(name string, items ...NewsItem) *MockNewsSource {
	return &MockNewsSource{name: name, items: items}
}

func (m *MockNewsSource) Name() string { return m.name }

func (m *MockNewsSource) FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error) {
	select {
	case <-ctx.Done():
		return nil, NewUnavailableError(m.name, "context cancelled", ctx.Err())
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]NewsItem, 0, len(m.items))
	for _, it := range m.items {
		if !it.PublishedAt.Before(since) {
			out = append(out, it)
		}
	}
	return out, nil
}

// SetError makes subsequent fetches fail with the given error.
func (m *MockNewsSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockNewsSource) SetItems(items []NewsItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

func (m *MockNewsSource) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// MockQuoteSource provides canned quotes for testing.
type MockQuoteSource struct {
	mu     sync.Mutex
	name   string
	quotes map[string]*Quote
	err    error
}

func NewMockQuoteSource(name string) *MockQuoteSource {
	return &MockQuoteSource{
		name: name,
		quotes: map[string]*Quote{
			"AAPL": {Symbol: "AAPL", Bid: 206.70, Ask: 206.90, Last: 206.80, Timestamp: time.Now(), Source: name},
			"NVDA": {Symbol: "NVDA", Bid: 449.90, Ask: 450.10, Last: 450.00, Timestamp: time.Now(), Source: name},
			"TSLA": {Symbol: "TSLA", Bid: 244.80, Ask: 245.20, Last: 245.00, Timestamp: time.Now(), Source: name},
		},
	}
}

func (m *MockQuoteSource) Name() string { return m.name }

func (m *MockQuoteSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	select {
	case <-ctx.Done():
		return nil, NewUnavailableError(m.name, "context cancelled", ctx.Err())
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quotes[NormalizeSymbol(symbol)]
	if !ok {
		return nil, NewBadResponseError(m.name, "symbol not found in mock data", nil)
	}
	cp := *q
	return &cp, nil
}

func (m *MockQuoteSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockQuoteSource) AddQuote(q *Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q != nil {
		m.quotes[NormalizeSymbol(q.Symbol)] = q
	}
}
