package dedup

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Window is the bounded FIFO set of recently alerted fingerprints. It is
// the single synchronization point guarding "at most one alert per
// duplicate headline+ticker pair within the retention window": Admit is
// evaluated under the mutex so concurrent scans of the same item cannot
// both pass.
type Window struct {
	mu    sync.Mutex
	limit int
	seen  map[string]bool
	order []string // insertion order for FIFO eviction
}

const DefaultWindowSize = 100

func NewWindow(limit int) *Window {
	if limit <= 0 {
		limit = DefaultWindowSize
	}
	return &Window{
		limit: limit,
		seen:  make(map[string]bool, limit),
	}
}

// Fingerprint canonicalizes headline+ticker into the dedup key:
// lowercase, punctuation and whitespace stripped, ticker appended.
func Fingerprint(headline, ticker string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(headline) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	b.WriteString("|")
	b.WriteString(strings.ToUpper(strings.TrimSpace(ticker)))
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)[:16]
}

// Admit returns true and records the fingerprint when it is unseen,
// evicting the oldest entry once the window exceeds its bound. A seen
// fingerprint returns false with no side effects.
func (w *Window) Admit(fingerprint string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen[fingerprint] {
		return false
	}
	w.seen[fingerprint] = true
	w.order = append(w.order, fingerprint)
	if len(w.order) > w.limit {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.seen, oldest)
	}
	return true
}

// Len reports the number of retained fingerprints.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}

// Reset drops all retained fingerprints. Used when dedup state is
// suspected corrupt; restarting empty beats aborting the process.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[string]bool, w.limit)
	w.order = nil
}
