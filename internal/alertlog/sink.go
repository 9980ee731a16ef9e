package alertlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/tradesignal/newsradar/internal/alerts"
)

// Sink is the bounded append-only alert log. The pipeline only appends;
// the in-memory ring of the most recent records exists for the dashboard
// collaborator's read path. Each append is also written through to a
// JSONL file so the history survives restarts.
type Sink struct {
	mu     sync.Mutex
	path   string
	limit  int
	recent []alerts.Record
}

const DefaultLimit = 100

func New(path string, limit int) (*Sink, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return &Sink{path: path, limit: limit}, nil
}

// Append retains the record in the bounded ring and appends it to the
// JSONL file. A file write failure does not evict the in-memory copy.
func (s *Sink) Append(rec alerts.Record) error {
	s.mu.Lock()
	s.recent = append(s.recent, rec)
	if len(s.recent) > s.limit {
		s.recent = s.recent[len(s.recent)-s.limit:]
	}
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// Recent returns a copy of the retained records, oldest first.
func (s *Sink) Recent() []alerts.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alerts.Record, len(s.recent))
	copy(out, s.recent)
	return out
}

// Len reports the number of retained records.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recent)
}
