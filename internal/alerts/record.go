package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradesignal/newsradar/internal/strategy"
)

// Record is one admitted (ticker, headline) alert. Created once per
// admitted pair, immutable afterwards, appended to the alert log and
// handed to the dispatcher.
type Record struct {
	ID             string              `json:"id"`
	Timestamp      time.Time           `json:"timestamp"`
	Ticker         string              `json:"ticker"`
	Headline       string              `json:"headline"`
	Source         string              `json:"source"`
	SentimentScore float64             `json:"sentiment_score"`
	Setup          strategy.TradeSetup `json:"trade_setup"`
	DedupHash      string              `json:"dedup_hash"`
}

// NewRecord stamps identity and time; everything else is caller-supplied.
func NewRecord(ticker, headline, source string, score float64, setup strategy.TradeSetup, dedupHash string) Record {
	return Record{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Ticker:         ticker,
		Headline:       headline,
		Source:         source,
		SentimentScore: score,
		Setup:          setup,
		DedupHash:      dedupHash,
	}
}
