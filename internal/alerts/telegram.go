package alerts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tradesignal/newsradar/internal/observ"
)

// DeliveryError classifies one failed send. Transient failures (network,
// 5xx, 429) are retried per policy; permanent ones (other 4xx) are
// recorded and not retried.
type DeliveryError struct {
	Type      string // "transient" | "permanent"
	Recipient string
	Message   string
	Cause     error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s delivery failure to %s: %s (%v)", e.Type, e.Recipient, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s delivery failure to %s: %s", e.Type, e.Recipient, e.Message)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

func (e *DeliveryError) Transient() bool { return e.Type == "transient" }

// DeliveryResult is the per-recipient outcome of one dispatch.
type DeliveryResult struct {
	Recipient string
	Delivered bool
	Attempts  int
	Err       error
}

// Telegram caps message text at 4096 characters (runes, not bytes).
const maxMessageLen = 4096

// TelegramDispatcher delivers alerts to Telegram chats via the bot API.
// Each recipient is attempted independently; one chat failing never
// blocks or fails the others.
type TelegramDispatcher struct {
	token      string
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy
}

type TelegramConfig struct {
	BotToken       string
	BaseURL        string // override for tests
	TimeoutSeconds int
	Policy         RetryPolicy
}

func NewTelegramDispatcher(cfg TelegramConfig) *TelegramDispatcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	return &TelegramDispatcher{
		token:   cfg.BotToken,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		policy: cfg.Policy,
	}
}

// Deliver sends the alert to every recipient concurrently and joins the
// results. With zero recipients it is a success no-op: there is nothing
// to fail. An unconfigured token marks every recipient failed-permanent
// without issuing requests.
func (t *TelegramDispatcher) Deliver(ctx context.Context, rec Record, recipients []string) []DeliveryResult {
	if len(recipients) == 0 {
		return nil
	}

	message := FormatMessage(rec)
	results := make([]DeliveryResult, len(recipients))

	if t.token == "" {
		for i, r := range recipients {
			results[i] = DeliveryResult{
				Recipient: r,
				Err:       &DeliveryError{Type: "permanent", Recipient: r, Message: "bot token not configured"},
			}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			results[i] = t.deliverOne(ctx, recipient, message)
		}(i, recipient)
	}
	wg.Wait()

	for _, res := range results {
		status := "delivered"
		if !res.Delivered {
			status = "failed"
		}
		observ.IncCounter("alert_deliveries_total", map[string]string{"status": status})
	}
	return results
}

func (t *TelegramDispatcher) deliverOne(ctx context.Context, recipient, message string) DeliveryResult {
	result := DeliveryResult{Recipient: recipient}

	for attempt := 1; attempt <= t.policy.MaxAttempts; attempt++ {
		result.Attempts = attempt
		err := t.sendMessage(ctx, recipient, message)
		if err == nil {
			result.Delivered = true
			return result
		}
		result.Err = err

		derr, ok := err.(*DeliveryError)
		if !ok || !derr.Transient() || attempt == t.policy.MaxAttempts {
			break
		}
		select {
		case <-time.After(t.policy.Backoff(attempt)):
		case <-ctx.Done():
			result.Err = &DeliveryError{Type: "transient", Recipient: recipient, Message: "context cancelled", Cause: ctx.Err()}
			return result
		}
	}

	observ.LogError("alert_delivery_failed", result.Err, map[string]any{
		"recipient": recipient,
		"attempts":  result.Attempts,
	})
	return result
}

func (t *TelegramDispatcher) sendMessage(ctx context.Context, chatID, text string) error {
	form := url.Values{
		"chat_id":    {strings.TrimSpace(chatID)},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &DeliveryError{Type: "permanent", Recipient: chatID, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Type: "transient", Recipient: chatID, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &DeliveryError{Type: "transient", Recipient: chatID, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	default:
		// 4xx other than rate limiting: bad chat id, bad token, etc.
		return &DeliveryError{Type: "permanent", Recipient: chatID, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
}

// FormatMessage renders the Markdown alert body, capped at Telegram's
// message length limit.
func FormatMessage(rec Record) string {
	price := "N/A"
	if rec.Setup.EstimatedContractPrice > 0 {
		price = fmt.Sprintf("$%.2f (est.)", rec.Setup.EstimatedContractPrice)
	}
	expiryDays := int(rec.Setup.ExpirationWindow.Hours() / 24)

	msg := fmt.Sprintf(`🚨 *Market News Alert*
🕒 %s (UTC)
📰 %s
🔄 %s
📡 %s

🎯 *Trade Setup*
• Ticker: %s
• Strategy: %s
• Strike: %s
• Price: %s
• Sentiment: %.2f
• Expiry window: %dd
• Exit: 50%% profit or before expiry`,
		rec.Timestamp.Format("2006-01-02 15:04"),
		rec.Headline,
		rec.Setup.Direction,
		rec.Source,
		rec.Ticker,
		strings.ReplaceAll(rec.Setup.Strategy, "_", " "),
		rec.Setup.Strike,
		price,
		rec.SentimentScore,
		expiryDays,
	)

	// cap by rune count; byte slicing could split a multibyte headline
	// character and Telegram rejects invalid UTF-8 outright
	if runes := []rune(msg); len(runes) > maxMessageLen {
		msg = string(runes[:maxMessageLen])
	}
	return msg
}
