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

// MarketauxSource fetches headlines from the Marketaux news API.
type MarketauxSource struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

type MarketauxConfig struct {
	APIKey          string
	BaseURL         string // override for tests
	TimeoutSeconds  int
	RateLimitPerMin int
}

func NewMarketauxSource(cfg MarketauxConfig) *MarketauxSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.marketaux.com"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 30
	}
	return &MarketauxSource{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60), 2),
	}
}

func (m *MarketauxSource) Name() string { return "marketaux" }

func (m *MarketauxSource) FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error) {
	if m.apiKey == "" {
		return nil, NewNotConfiguredError("marketaux")
	}
	if err := m.rateLimiter.Wait(ctx); err != nil {
		return nil, NewUnavailableError("marketaux", "rate limit wait cancelled", err)
	}

	params := url.Values{
		"api_token":       {m.apiKey},
		"language":        {"en"},
		"published_after": {since.UTC().Format("2006-01-02T15:04")},
	}
	requestURL := m.baseURL + "/v1/news/all?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, NewUnavailableError("marketaux", "failed to create request", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, NewUnavailableError("marketaux", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewRateLimitError("marketaux", "API rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewUnavailableError("marketaux", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}

	return m.parseResponse(resp.Body, since)
}

func (m *MarketauxSource) parseResponse(body io.Reader, since time.Time) ([]NewsItem, error) {
	var response struct {
		Data []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, NewBadResponseError("marketaux", "failed to parse response", err)
	}
	if response.Error.Code != "" {
		return nil, NewUnavailableError("marketaux", response.Error.Message, nil)
	}

	items := make([]NewsItem, 0, len(response.Data))
	for _, d := range response.Data {
		if d.Title == "" {
			continue
		}
		published, err := time.Parse("2006-01-02T15:04:05.000000Z", d.PublishedAt)
		if err != nil {
			// Marketaux sometimes emits plain RFC3339
			published, err = time.Parse(time.RFC3339, d.PublishedAt)
			if err != nil {
				published = time.Now().UTC()
			}
		}
		if published.Before(since) {
			continue
		}
		items = append(items, NewsItem{
			Headline:    d.Title,
			Source:      "marketaux",
			PublishedAt: published.UTC(),
			URL:         d.URL,
		})
	}
	return items, nil
}
