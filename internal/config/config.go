package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Scan struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	LookbackMinutes int `yaml:"lookback_minutes"` // first-run fetch window
	TimeoutSeconds  int `yaml:"timeout_seconds"`  // whole-cycle ceiling
}

type Sentiment struct {
	Threshold float64 `yaml:"threshold"`
}

type Watchlist struct {
	Tickers []string `yaml:"tickers"`
}

type Dedup struct {
	WindowSize int `yaml:"window_size"`
}

type AlertLog struct {
	Path       string `yaml:"path"`
	MaxRecords int    `yaml:"max_records"`
}

type Telegram struct {
	Enabled        bool     `yaml:"enabled"`
	BotTokenEnv    string   `yaml:"bot_token_env"`
	ChatIDs        []string `yaml:"chat_ids"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	MaxAttempts    int      `yaml:"max_attempts"`
	BackoffBaseMs  int      `yaml:"backoff_base_ms"`
	BackoffMaxMs   int      `yaml:"backoff_max_ms"`
}

type News struct {
	Priority        []string `yaml:"priority"` // first healthy source wins per cycle
	RSSFeeds        []string `yaml:"rss_feeds"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

type Quotes struct {
	Priority        []string `yaml:"priority"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

type Strategy struct {
	ExpirationDays   int     `yaml:"expiration_days"`
	ContractPricePct float64 `yaml:"contract_price_pct"` // coarse estimate, % of underlying
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Root struct {
	Scan      Scan      `yaml:"scan"`
	Sentiment Sentiment `yaml:"sentiment"`
	Watchlist Watchlist `yaml:"watchlist"`
	Dedup     Dedup     `yaml:"dedup"`
	AlertLog  AlertLog  `yaml:"alert_log"`
	Telegram  Telegram  `yaml:"telegram"`
	News      News      `yaml:"news"`
	Quotes    Quotes    `yaml:"quotes"`
	Strategy  Strategy  `yaml:"strategy"`
	Server    Server    `yaml:"server"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	applyDefaults(&c)
	return c, nil
}

// Default returns a Root with all defaults applied and no file read.
func Default() Root {
	var c Root
	applyDefaults(&c)
	return c
}

func applyDefaults(c *Root) {
	if c.Scan.IntervalMinutes == 0 {
		c.Scan.IntervalMinutes = 10
	}
	if c.Scan.LookbackMinutes == 0 {
		c.Scan.LookbackMinutes = 30
	}
	if c.Scan.TimeoutSeconds == 0 {
		c.Scan.TimeoutSeconds = 60
	}
	if c.Sentiment.Threshold == 0 {
		c.Sentiment.Threshold = 0.5
	}
	if len(c.Watchlist.Tickers) == 0 {
		c.Watchlist.Tickers = []string{"AAPL", "TSLA", "SPY", "MSFT", "AMZN", "NVDA", "GOOG"}
	}
	if c.Dedup.WindowSize == 0 {
		c.Dedup.WindowSize = 100
	}
	if c.AlertLog.Path == "" {
		c.AlertLog.Path = "data/alerts.jsonl"
	}
	if c.AlertLog.MaxRecords == 0 {
		c.AlertLog.MaxRecords = 100
	}
	if c.Telegram.BotTokenEnv == "" {
		c.Telegram.BotTokenEnv = "TELEGRAM_BOT_TOKEN"
	}
	if c.Telegram.TimeoutSeconds == 0 {
		c.Telegram.TimeoutSeconds = 10
	}
	if c.Telegram.MaxAttempts == 0 {
		c.Telegram.MaxAttempts = 3
	}
	if c.Telegram.BackoffBaseMs == 0 {
		c.Telegram.BackoffBaseMs = 500
	}
	if c.Telegram.BackoffMaxMs == 0 {
		c.Telegram.BackoffMaxMs = 8000
	}
	if len(c.News.Priority) == 0 {
		c.News.Priority = []string{"marketaux", "polygon", "finnhub", "rss"}
	}
	if len(c.News.RSSFeeds) == 0 {
		c.News.RSSFeeds = []string{"https://feeds.finance.yahoo.com/rss/2.0/headline?s=%5EGSPC&region=US&lang=en-US"}
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.News.RateLimitPerMin == 0 {
		c.News.RateLimitPerMin = 30
	}
	if len(c.Quotes.Priority) == 0 {
		c.Quotes.Priority = []string{"polygon", "finnhub"}
	}
	if c.Quotes.TimeoutSeconds == 0 {
		c.Quotes.TimeoutSeconds = 5
	}
	if c.Quotes.RateLimitPerMin == 0 {
		c.Quotes.RateLimitPerMin = 60
	}
	if c.Strategy.ExpirationDays == 0 {
		c.Strategy.ExpirationDays = 14
	}
	if c.Strategy.ContractPricePct == 0 {
		c.Strategy.ContractPricePct = 3.5
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
}

// ApplyEnvOverrides layers deployment env vars over the file config.
// Credentials are always read from the environment, never from the file.
func ApplyEnvOverrides(c *Root) {
	if v := os.Getenv("SENTIMENT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Sentiment.Threshold = f
		}
	}
	if v := os.Getenv("SCAN_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scan.IntervalMinutes = n
		}
	}
	if v := os.Getenv("LIQUID_TICKERS"); v != "" {
		c.Watchlist.Tickers = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		c.Telegram.ChatIDs = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		c.Telegram.Enabled = v == "true"
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
