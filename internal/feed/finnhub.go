package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// FinnhubSource serves general market news and real-time quotes.
type FinnhubSource struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

type FinnhubConfig struct {
	APIKey          string
	BaseURL         string // override for tests
	TimeoutSeconds  int
	RateLimitPerMin int
}

func NewFinnhubSource(cfg FinnhubConfig) *FinnhubSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 60
	}
	return &FinnhubSource{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60), 2),
	}
}

func (f *FinnhubSource) Name() string { return "finnhub" }

func (f *FinnhubSource) FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error) {
	body, err := f.get(ctx, "/news?"+url.Values{
		"category": {"general"},
		"token":    {f.apiKey},
	}.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var articles []struct {
		Headline string `json:"headline"`
		URL      string `json:"url"`
		Datetime int64  `json:"datetime"` // unix seconds
	}
	if err := json.NewDecoder(body).Decode(&articles); err != nil {
		return nil, NewBadResponseError("finnhub", "failed to parse news response", err)
	}

	items := make([]NewsItem, 0, len(articles))
	for _, a := range articles {
		if a.Headline == "" {
			continue
		}
		published := time.Unix(a.Datetime, 0).UTC()
		if published.Before(since) {
			continue
		}
		items = append(items, NewsItem{
			Headline:    a.Headline,
			Source:      "finnhub",
			PublishedAt: published,
			URL:         a.URL,
		})
	}
	return items, nil
}

func (f *FinnhubSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, NewBadResponseError("finnhub", "empty symbol", nil)
	}

	body, err := f.get(ctx, "/quote?"+url.Values{
		"symbol": {symbol},
		"token":  {f.apiKey},
	}.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var response struct {
		Current   float64 `json:"c"`
		Timestamp int64   `json:"t"`
	}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, NewBadResponseError("finnhub", "failed to parse quote response", err)
	}
	// Finnhub signals an unknown symbol with an all-zero payload
	if response.Current <= 0 {
		return nil, NewBadResponseError("finnhub", "no price data for "+symbol, nil)
	}

	return &Quote{
		Symbol:    symbol,
		Last:      response.Current,
		Timestamp: time.Unix(response.Timestamp, 0),
		Source:    "finnhub",
	}, nil
}

func (f *FinnhubSource) get(ctx context.Context, pathAndQuery string) (io.ReadCloser, error) {
	if f.apiKey == "" {
		return nil, NewNotConfiguredError("finnhub")
	}
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, NewUnavailableError("finnhub", "rate limit wait cancelled", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, NewUnavailableError("finnhub", "failed to create request", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, NewUnavailableError("finnhub", "request failed", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, NewRateLimitError("finnhub", "API rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, NewUnavailableError("finnhub", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}
	return resp.Body, nil
}
