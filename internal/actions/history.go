package actions

import (
	"context"
	"log"
	"sync"
	"time"
)

const historyMaxAge = 24 * time.Hour

// History is the bounded in-memory store of finished and running execution
// records. Nothing here is persisted; records age out after historyMaxAge.
type History struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewHistory() *History {
	return &History{records: make(map[string]*Record)}
}

func (h *History) Put(rec *Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[rec.ID] = rec
}

func (h *History) Get(id string) (*Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[id]
	return rec, ok
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Prune drops records older than maxAge and returns how many were removed.
func (h *History) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for id, rec := range h.records {
		if rec.StartedAt.Before(cutoff) {
			delete(h.records, id)
			n++
		}
	}
	return n
}

// RunCleaner prunes the history every interval until ctx is done. Call from
// main or app lifecycle.
func (h *History) RunCleaner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Prune(historyMaxAge); n > 0 {
				log.Printf("[INFO] Pruned %d expired execution records", n)
			}
		}
	}
}
