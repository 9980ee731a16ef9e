package feed

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NewsItem is the normalized shape every provider reduces to.
// Items live for one scan cycle and are never persisted.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source"` // "rss"|"marketaux"|"polygon"|"finnhub"|"mock"
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url,omitempty"`
}

// NewsSource fetches headlines published at or after the given time.
// Zero items is a success; transient failures surface as *SourceError
// so the caller can fall back to the next provider.
type NewsSource interface {
	Name() string
	FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error)
}

// Quote is the minimal market snapshot the strategy stage needs.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// QuoteSource fetches a current quote for one symbol.
type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// SourceError classifies provider failures. Everything except
// "bad_response" on a well-formed reply is treated as transient by the
// fallback logic.
type SourceError struct {
	Type     string // "unavailable", "rate_limit", "not_configured", "bad_response"
	Provider string
	Message  string
	Cause    error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s (%v)", e.Provider, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", e.Provider, e.Type, e.Message)
}

func (e *SourceError) Unwrap() error { return e.Cause }

func NewUnavailableError(provider, message string, cause error) *SourceError {
	return &SourceError{Type: "unavailable", Provider: provider, Message: message, Cause: cause}
}

func NewRateLimitError(provider, message string) *SourceError {
	return &SourceError{Type: "rate_limit", Provider: provider, Message: message}
}

func NewNotConfiguredError(provider string) *SourceError {
	return &SourceError{Type: "not_configured", Provider: provider, Message: "missing credentials"}
}

func NewBadResponseError(provider, message string, cause error) *SourceError {
	return &SourceError{Type: "bad_response", Provider: provider, Message: message, Cause: cause}
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateQuote rejects quotes the strategy stage must not price from.
func ValidateQuote(q *Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}
	q.Symbol = NormalizeSymbol(q.Symbol)
	if q.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if q.Last <= 0 {
		return fmt.Errorf("invalid last price: %.4f", q.Last)
	}
	if q.Ask > 0 && q.Bid > 0 && q.Ask < q.Bid {
		return fmt.Errorf("invalid spread: ask(%.4f) < bid(%.4f)", q.Ask, q.Bid)
	}
	if q.Timestamp.After(time.Now().Add(5 * time.Minute)) {
		return fmt.Errorf("quote timestamp too far in future: %v", q.Timestamp)
	}
	return nil
}
