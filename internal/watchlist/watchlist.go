package watchlist

import (
	"strings"
	"sync"
)

// Watchlist is the ordered, unique, uppercase ticker set. The command
// collaborator mutates it; the scan pipeline only ever reads a Snapshot
// taken at cycle start, so a mid-scan Add or Remove never changes a
// running cycle.
type Watchlist struct {
	mu      sync.RWMutex
	tickers []string
	index   map[string]bool
}

func New(initial []string) *Watchlist {
	w := &Watchlist{index: make(map[string]bool)}
	for _, t := range initial {
		w.Add(t)
	}
	return w
}

// Add appends the ticker if absent. Returns false for duplicates and
// empty symbols.
func (w *Watchlist) Add(ticker string) bool {
	ticker = normalize(ticker)
	if ticker == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.index[ticker] {
		return false
	}
	w.index[ticker] = true
	w.tickers = append(w.tickers, ticker)
	return true
}

// Remove deletes the ticker, preserving order of the rest.
func (w *Watchlist) Remove(ticker string) bool {
	ticker = normalize(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.index[ticker] {
		return false
	}
	delete(w.index, ticker)
	for i, t := range w.tickers {
		if t == ticker {
			w.tickers = append(w.tickers[:i], w.tickers[i+1:]...)
			break
		}
	}
	return true
}

// List is Snapshot under its external-interface name.
func (w *Watchlist) List() []string { return w.Snapshot() }

// Snapshot returns an independent copy of the current ticker order.
func (w *Watchlist) Snapshot() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.tickers))
	copy(out, w.tickers)
	return out
}

func (w *Watchlist) Contains(ticker string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.index[normalize(ticker)]
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
