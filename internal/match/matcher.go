package match

import (
	"strings"
	"unicode"
)

// Matcher maps headline text plus a watchlist snapshot to the set of
// matched symbols. Matching is whole-word and case-insensitive: a
// symbol never matches inside an unrelated word, so ticker "F" does not
// match "OFFER". Company-name aliases cover headlines that mention the
// issuer rather than the symbol.
type Matcher struct {
	aliases map[string][]string // symbol -> lowercase alias words
}

// Common issuer names for liquid tickers. Extend per deployment via
// AddAlias; matching falls back to the raw symbol for everything else.
var defaultAliases = map[string][]string{
	"AAPL": {"apple"},
	"TSLA": {"tesla"},
	"MSFT": {"microsoft"},
	"AMZN": {"amazon"},
	"NVDA": {"nvidia"},
	"GOOG": {"google", "alphabet"},
	"META": {"meta", "facebook"},
	"NFLX": {"netflix"},
	"AMD":  {"amd"},
	"INTC": {"intel"},
	"BA":   {"boeing"},
	"DIS":  {"disney"},
	"JPM":  {"jpmorgan"},
}

func NewMatcher() *Matcher {
	aliases := make(map[string][]string, len(defaultAliases))
	for sym, names := range defaultAliases {
		aliases[sym] = append([]string(nil), names...)
	}
	return &Matcher{aliases: aliases}
}

// AddAlias registers an extra lowercase name for a symbol.
func (m *Matcher) AddAlias(symbol, name string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	name = strings.ToLower(strings.TrimSpace(name))
	if symbol == "" || name == "" {
		return
	}
	m.aliases[symbol] = append(m.aliases[symbol], name)
}

// Match returns the watchlist symbols present in the headline, in
// watchlist order. The empty result is the common case and is computed
// from a single tokenization pass over the headline.
func (m *Matcher) Match(text string, watchlist []string) []string {
	if text == "" || len(watchlist) == 0 {
		return nil
	}

	words := wordSet(text)
	var matched []string
	for _, sym := range watchlist {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if words[strings.ToLower(sym)] {
			matched = append(matched, sym)
			continue
		}
		for _, alias := range m.aliases[sym] {
			if words[alias] {
				matched = append(matched, sym)
				break
			}
		}
	}
	return matched
}

// wordSet lowercases the text and splits on word boundaries. Dots and
// ampersands stay inside tokens so "BRK.B" and "S&P" survive as words.
func wordSet(text string) map[string]bool {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if r == '.' || r == '&' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[strings.Trim(t, ".")] = true
	}
	return set
}
