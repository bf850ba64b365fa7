// Package session tracks per-session interaction history without retaining
// message content. Records carry only derived facts (risk level, category,
// text length) so a leaked ledger discloses no disclosures.
package session

import (
	"context"
	"time"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/risk"
)

// DefaultMaxAge is how long a session's records are kept before eviction.
const DefaultMaxAge = 24 * time.Hour

// Record is one privacy-safe interaction entry.
type Record struct {
	SessionID      string           `json:"session_id"`
	Timestamp      time.Time        `json:"timestamp"`
	RiskLevel      risk.Level       `json:"risk_level"`
	CrisisType     lexicon.Category `json:"crisis_type"`
	CrisisDetected bool             `json:"crisis_detected"`
	ImmediateRisk  bool             `json:"immediate_risk"`
	TextLength     int              `json:"text_length"`
	HadImage       bool             `json:"had_image"`
}

// Summary aggregates a session's history.
type Summary struct {
	SessionID    string         `json:"session_id"`
	Interactions int            `json:"interactions"`
	HighestRisk  risk.Level     `json:"highest_risk"`
	CrisisCounts map[string]int `json:"crisis_counts,omitempty"`
	FirstSeen    time.Time      `json:"first_seen"`
	LastSeen     time.Time      `json:"last_seen"`
}

// Ledger is the session store. Implementations must be safe for concurrent
// use.
type Ledger interface {
	// Record appends one interaction entry.
	Record(ctx context.Context, rec Record) error

	// Summary aggregates a session's records. A session with no records
	// yields a zero-interaction summary, not an error.
	Summary(ctx context.Context, sessionID string) (*Summary, error)

	// Evict removes sessions idle longer than maxAge and reports how many
	// were dropped.
	Evict(ctx context.Context, maxAge time.Duration) (int, error)

	// Close releases backing resources.
	Close() error
}
