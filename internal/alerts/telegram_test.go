package alerts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradesignal/newsradar/internal/sentiment"
	"github.com/tradesignal/newsradar/internal/strategy"
)

func testRecord() Record {
	return NewRecord("AAPL", "Apple launches new AI chip for Macs", "marketaux", 0.71,
		strategy.TradeSetup{
			Ticker:                 "AAPL",
			Direction:              sentiment.Bullish,
			Strategy:               "LONG_CALL",
			Strike:                 "210",
			ExpirationWindow:       14 * 24 * time.Hour,
			EstimatedContractPrice: 7.24,
			Rationale:              "bullish headline sentiment",
		}, "abcdef0123456789")
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newDispatcher(baseURL string, attempts int) *TelegramDispatcher {
	return NewTelegramDispatcher(TelegramConfig{
		BotToken: "test-token",
		BaseURL:  baseURL,
		Policy:   fastPolicy(attempts),
	})
}

func TestDeliverAllRecipients(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		seen[r.Form.Get("chat_id")]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, 3)
	results := d.Deliver(context.Background(), testRecord(), []string{"111", "222", "333"})

	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Delivered, "recipient %s", res.Recipient)
		assert.Equal(t, 1, res.Attempts)
	}
	assert.Len(t, seen, 3)
}

func TestDeliverPartialFailureIsolation(t *testing.T) {
	// recipient "bad" fails permanently; the others must still be attempted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("chat_id") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, 3)
	results := d.Deliver(context.Background(), testRecord(), []string{"111", "bad", "222"})

	require.Len(t, results, 3)
	delivered := 0
	for _, res := range results {
		if res.Recipient == "bad" {
			assert.False(t, res.Delivered)
			assert.Equal(t, 1, res.Attempts, "permanent failure must not be retried")
			var derr *DeliveryError
			require.ErrorAs(t, res.Err, &derr)
			assert.Equal(t, "permanent", derr.Type)
		} else {
			assert.True(t, res.Delivered, "recipient %s", res.Recipient)
			delivered++
		}
	}
	assert.Equal(t, 2, delivered)
}

func TestDeliverRetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, 3)
	results := d.Deliver(context.Background(), testRecord(), []string{"111"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Delivered)
	assert.Equal(t, 3, results[0].Attempts)
}

func TestDeliverGivesUpAfterAttemptCeiling(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, 3)
	results := d.Deliver(context.Background(), testRecord(), []string{"111"})

	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	assert.Equal(t, 3, results[0].Attempts)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestDeliverNoRecipientsIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected with zero recipients")
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, 3)
	results := d.Deliver(context.Background(), testRecord(), nil)
	assert.Empty(t, results)
}

func TestDeliverMissingToken(t *testing.T) {
	d := NewTelegramDispatcher(TelegramConfig{BotToken: "", Policy: fastPolicy(3)})
	results := d.Deliver(context.Background(), testRecord(), []string{"111"})

	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	var derr *DeliveryError
	require.ErrorAs(t, results[0].Err, &derr)
	assert.Equal(t, "permanent", derr.Type)
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(testRecord())

	assert.Contains(t, msg, "AAPL")
	assert.Contains(t, msg, "Apple launches new AI chip for Macs")
	assert.Contains(t, msg, "LONG CALL")
	assert.Contains(t, msg, "210")
	assert.Contains(t, msg, "0.71")
	assert.Contains(t, msg, "14d")
	assert.LessOrEqual(t, len(msg), maxMessageLen)
}

func TestFormatMessageTruncation(t *testing.T) {
	rec := testRecord()
	rec.Headline = strings.Repeat("very long headline ", 400)
	msg := FormatMessage(rec)
	assert.LessOrEqual(t, len([]rune(msg)), maxMessageLen)
}

func TestFormatMessageTruncationMultibyte(t *testing.T) {
	// shifting the multibyte run by a few ASCII bytes walks the cap
	// across every byte offset within a 3-byte character
	for pad := 0; pad < 4; pad++ {
		rec := testRecord()
		rec.Headline = strings.Repeat("x", pad) + strings.Repeat("上涨", 2100)
		msg := FormatMessage(rec)
		assert.True(t, utf8.ValidString(msg), "pad %d produced invalid UTF-8", pad)
		assert.LessOrEqual(t, len([]rune(msg)), maxMessageLen)
	}
}

func TestBackoffBounded(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, JitterFrac: 0.1}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 5; attempt++ {
		d := p.Backoff(attempt)
		assert.GreaterOrEqual(t, d, p.BaseDelay)
		assert.LessOrEqual(t, d, p.MaxDelay+p.MaxDelay/10)
		if attempt <= 2 {
			assert.GreaterOrEqual(t, d, prev/2, "backoff should not collapse")
		}
		prev = d
	}
}
