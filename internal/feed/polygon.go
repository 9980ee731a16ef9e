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

// PolygonSource serves both data classes: reference news and NBBO quotes.
type PolygonSource struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

type PolygonConfig struct {
	APIKey          string
	BaseURL         string // override for tests
	TimeoutSeconds  int
	RateLimitPerMin int
}

func NewPolygonSource(cfg PolygonConfig) *PolygonSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.polygon.io"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 5
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 100
	}
	return &PolygonSource{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60), 2),
	}
}

func (p *PolygonSource) Name() string { return "polygon" }

func (p *PolygonSource) FetchSince(ctx context.Context, since time.Time) ([]NewsItem, error) {
	body, err := p.get(ctx, "/v2/reference/news?"+url.Values{
		"published_utc.gte": {since.UTC().Format(time.RFC3339)},
		"limit":             {"50"},
		"apiKey":            {p.apiKey},
	}.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var response struct {
		Status  string `json:"status"`
		Results []struct {
			Title        string `json:"title"`
			ArticleURL   string `json:"article_url"`
			PublishedUTC string `json:"published_utc"`
		} `json:"results"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, NewBadResponseError("polygon", "failed to parse news response", err)
	}
	if response.Status != "OK" && response.Status != "DELAYED" {
		if response.Error != "" {
			return nil, NewUnavailableError("polygon", response.Error, nil)
		}
		return nil, NewUnavailableError("polygon", "non-OK status: "+response.Status, nil)
	}

	items := make([]NewsItem, 0, len(response.Results))
	for _, r := range response.Results {
		if r.Title == "" {
			continue
		}
		published, err := time.Parse(time.RFC3339, r.PublishedUTC)
		if err != nil {
			published = time.Now().UTC()
		}
		items = append(items, NewsItem{
			Headline:    r.Title,
			Source:      "polygon",
			PublishedAt: published.UTC(),
			URL:         r.ArticleURL,
		})
	}
	return items, nil
}

// GetQuote fetches the last NBBO for a symbol. Last is approximated as
// the bid/ask midpoint, matching what the strike heuristic needs.
func (p *PolygonSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, NewBadResponseError("polygon", "empty symbol", nil)
	}

	body, err := p.get(ctx, "/v2/last/nbbo/"+symbol+"?"+url.Values{"apiKey": {p.apiKey}}.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var response struct {
		Status  string `json:"status"`
		Results struct {
			T  string  `json:"T"` // ticker
			P  float64 `json:"p"` // bid price
			P1 float64 `json:"P"` // ask price
			T1 int64   `json:"t"` // timestamp ns
		} `json:"results"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, NewBadResponseError("polygon", "failed to parse quote response", err)
	}
	if response.Status != "OK" {
		if response.Error != "" {
			return nil, NewUnavailableError("polygon", response.Error, nil)
		}
		return nil, NewUnavailableError("polygon", "non-OK status: "+response.Status, nil)
	}

	r := response.Results
	last := (r.P + r.P1) / 2
	if last <= 0 {
		return nil, NewBadResponseError("polygon", "invalid price data", nil)
	}

	return &Quote{
		Symbol:    symbol,
		Bid:       r.P,
		Ask:       r.P1,
		Last:      last,
		Timestamp: time.Unix(0, r.T1),
		Source:    "polygon",
	}, nil
}

func (p *PolygonSource) get(ctx context.Context, pathAndQuery string) (io.ReadCloser, error) {
	if p.apiKey == "" {
		return nil, NewNotConfiguredError("polygon")
	}
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, NewUnavailableError("polygon", "rate limit wait cancelled", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, NewUnavailableError("polygon", "failed to create request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, NewUnavailableError("polygon", "request failed", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, NewRateLimitError("polygon", "API rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, NewUnavailableError("polygon", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}
	return resp.Body, nil
}
