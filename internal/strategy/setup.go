package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/tradesignal/newsradar/internal/feed"
	"github.com/tradesignal/newsradar/internal/sentiment"
)

// TradeSetup is a heuristic option suggestion derived from one matched
// headline. It is an idea prompt, not priced advice: the contract price
// is a coarse percentage-of-underlying estimate, never a real options
// pricing computation.
type TradeSetup struct {
	Ticker                 string              `json:"ticker"`
	Direction              sentiment.Direction `json:"direction"`
	Strategy               string              `json:"strategy"` // "LONG_CALL" | "LONG_PUT"
	Strike                 string              `json:"strike"`   // dollar figure or "ATM"
	ExpirationWindow       time.Duration       `json:"expiration_window"`
	EstimatedContractPrice float64             `json:"estimated_contract_price,omitempty"` // 0 when no quote
	Rationale              string              `json:"rationale"`
}

type Config struct {
	ExpirationDays   int
	ContractPricePct float64 // estimate as % of underlying
}

// Synthesize maps (ticker, sentiment, optional quote) to a TradeSetup.
// It never fails: without a quote it degrades to the "ATM" strike marker
// and no price estimate. Neutral direction is the caller's problem; this
// function treats any non-bearish input as a call.
func Synthesize(ticker string, res sentiment.Result, quote *feed.Quote, cfg Config) TradeSetup {
	if cfg.ExpirationDays <= 0 {
		cfg.ExpirationDays = 14
	}
	if cfg.ContractPricePct <= 0 {
		cfg.ContractPricePct = 3.5
	}

	strat := "LONG_CALL"
	if res.Direction == sentiment.Bearish {
		strat = "LONG_PUT"
	}

	setup := TradeSetup{
		Ticker:           ticker,
		Direction:        res.Direction,
		Strategy:         strat,
		Strike:           "ATM",
		ExpirationWindow: time.Duration(cfg.ExpirationDays) * 24 * time.Hour,
	}

	if quote != nil && quote.Last > 0 {
		setup.Strike = fmt.Sprintf("%.0f", roundStrike(quote.Last))
		setup.EstimatedContractPrice = math.Round(quote.Last*cfg.ContractPricePct) / 100
	}

	setup.Rationale = fmt.Sprintf(
		"%s headline sentiment %.2f; %s near %s, exit at 50%% profit or before expiry",
		res.Direction, res.Score, strat, setup.Strike,
	)
	return setup
}

// roundStrike snaps the underlying price to the nearest listed-strike
// increment: $1 under $25, $5 under $200, $10 above.
func roundStrike(last float64) float64 {
	switch {
	case last < 25:
		return math.Round(last)
	case last < 200:
		return math.Round(last/5) * 5
	default:
		return math.Round(last/10) * 10
	}
}
