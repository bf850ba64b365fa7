package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLedger keeps session records in process memory with TTL-based
// cleanup. Suitable for single-node deployments; distributed deployments
// use RedisLedger.
type MemoryLedger struct {
	mu       sync.RWMutex
	sessions map[string][]Record

	maxAge     time.Duration
	cleanupTTL time.Duration

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// MemoryOption configures a MemoryLedger.
type MemoryOption func(*MemoryLedger)

// WithMaxAge sets how long sessions are kept after creation.
func WithMaxAge(d time.Duration) MemoryOption {
	return func(l *MemoryLedger) { l.maxAge = d }
}

// WithCleanupInterval sets how often the cleanup routine runs.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(l *MemoryLedger) { l.cleanupTTL = d }
}

// NewMemory creates an in-memory ledger and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemory(opts ...MemoryOption) *MemoryLedger {
	l := &MemoryLedger{
		sessions:    make(map[string][]Record),
		maxAge:      DefaultMaxAge,
		cleanupTTL:  5 * time.Minute,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.cleanupLoop()

	return l
}

// Record appends one interaction entry.
func (l *MemoryLedger) Record(_ context.Context, rec Record) error {
	if rec.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[rec.SessionID] = append(l.sessions[rec.SessionID], rec)
	return nil
}

// Summary aggregates a session's records.
func (l *MemoryLedger) Summary(_ context.Context, sessionID string) (*Summary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := &Summary{SessionID: sessionID}
	records := l.sessions[sessionID]
	if len(records) == 0 {
		return summary, nil
	}

	summary.Interactions = len(records)
	summary.FirstSeen = records[0].Timestamp
	summary.LastSeen = records[len(records)-1].Timestamp
	summary.CrisisCounts = make(map[string]int)
	for _, rec := range records {
		if rec.RiskLevel > summary.HighestRisk {
			summary.HighestRisk = rec.RiskLevel
		}
		if rec.CrisisDetected {
			summary.CrisisCounts[string(rec.CrisisType)]++
		}
	}
	if len(summary.CrisisCounts) == 0 {
		summary.CrisisCounts = nil
	}
	return summary, nil
}

// Evict removes sessions created longer than maxAge ago. Age is measured
// from the first record, not the last, so a continuously active session
// still ages out.
func (l *MemoryLedger) Evict(_ context.Context, maxAge time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	evicted := 0
	for id, records := range l.sessions {
		created := records[0].Timestamp
		if now.Sub(created) > maxAge {
			delete(l.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Close stops the cleanup goroutine.
func (l *MemoryLedger) Close() error {
	l.cleanupOnce.Do(func() {
		close(l.stopCleanup)
	})
	return nil
}

func (l *MemoryLedger) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = l.Evict(context.Background(), l.maxAge)
		case <-l.stopCleanup:
			return
		}
	}
}

// Len reports how many sessions are held.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}
