package actions

import (
	"context"
	"log"
	"sync"
	"time"
)

const ledgerMaxAge = 24 * time.Hour

type ledgerKey struct {
	actorID  string
	guildID  string
	buttonID string
}

type ledgerEntry struct {
	lastUsed      time.Time
	uses          int
	cooldownUntil time.Time
}

// Ledger is the process-wide cooldown and usage map keyed by
// (actor, guild, button). It is the only mutable state shared between
// concurrent runs. Reads during precondition checks and the later Commit are
// individually locked but not transactional: two presses from the same actor
// landing before the first commit can both pass the cooldown check. That
// window is a documented property of the design, not something the ledger
// hides.
type Ledger struct {
	mu      sync.Mutex
	entries map[ledgerKey]*ledgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[ledgerKey]*ledgerEntry)}
}

// CooldownRemaining returns how long the actor must still wait, or zero.
func (l *Ledger) CooldownRemaining(actorID, guildID, buttonID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ledgerKey{actorID, guildID, buttonID}]
	if !ok {
		return 0
	}
	if remaining := time.Until(e.cooldownUntil); remaining > 0 {
		return remaining
	}
	return 0
}

// Uses returns how many committed runs the actor has on this button.
func (l *Ledger) Uses(actorID, guildID, buttonID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[ledgerKey{actorID, guildID, buttonID}]; ok {
		return e.uses
	}
	return 0
}

// Commit records one finished run: bumps the use counter and arms the
// cooldown window.
func (l *Ledger) Commit(actorID, guildID, buttonID string, cooldown time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey{actorID, guildID, buttonID}
	e, ok := l.entries[key]
	if !ok {
		e = &ledgerEntry{}
		l.entries[key] = e
	}
	e.lastUsed = time.Now()
	e.uses++
	if cooldown > 0 {
		e.cooldownUntil = time.Now().Add(cooldown)
	}
}

// ClearExpired evicts entries whose cooldown lapsed and that have not been
// touched for ledgerMaxAge. Returns the eviction count.
func (l *Ledger) ClearExpired() int {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, e := range l.entries {
		if e.cooldownUntil.Before(now) && now.Sub(e.lastUsed) > ledgerMaxAge {
			delete(l.entries, key)
			n++
		}
	}
	return n
}

// RunCleaner evicts expired ledger entries every interval until ctx is done.
func (l *Ledger) RunCleaner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.ClearExpired(); n > 0 {
				log.Printf("[INFO] Evicted %d expired cooldown entries", n)
			}
		}
	}
}
