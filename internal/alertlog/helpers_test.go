package alertlog

import (
	"time"

	"github.com/tradesignal/newsradar/internal/sentiment"
	"github.com/tradesignal/newsradar/internal/strategy"
)

func testSetup() strategy.TradeSetup {
	return strategy.TradeSetup{
		Ticker:           "AAPL",
		Direction:        sentiment.Bullish,
		Strategy:         "LONG_CALL",
		Strike:           "ATM",
		ExpirationWindow: 14 * 24 * time.Hour,
		Rationale:        "test",
	}
}
