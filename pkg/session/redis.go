package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haven-ai/haven/pkg/risk"
)

const redisKeyPrefix = "haven:session:"

// RedisLedger stores session aggregates in Redis hashes, one key per
// session. Keys carry a TTL from creation so sessions also age out
// server-side.
type RedisLedger struct {
	client *redis.Client
	maxAge time.Duration
}

// NewRedis wraps an existing client. The caller owns connection settings;
// Close closes the client.
func NewRedis(client *redis.Client, maxAge time.Duration) *RedisLedger {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &RedisLedger{client: client, maxAge: maxAge}
}

// NewRedisFromAddr dials addr and verifies the connection.
func NewRedisFromAddr(ctx context.Context, addr, password string, db int, maxAge time.Duration) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, maxAge), nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Record appends one interaction entry by folding it into the session's
// aggregate hash.
func (l *RedisLedger) Record(ctx context.Context, rec Record) error {
	if rec.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	key := redisKey(rec.SessionID)

	// Highest risk is a read-compare-write; interleaved writers can only
	// disagree between two concurrent records of the same session, and the
	// larger one wins on its own write.
	current, err := l.client.HGet(ctx, key, "highest_risk").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("redis read highest_risk: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "interactions", 1)
	pipe.HSetNX(ctx, key, "first_seen", rec.Timestamp.Format(time.RFC3339Nano))
	pipe.HSet(ctx, key, "last_seen", rec.Timestamp.Format(time.RFC3339Nano))
	if rec.RiskLevel > risk.ParseLevel(current) {
		pipe.HSet(ctx, key, "highest_risk", rec.RiskLevel.String())
	}
	if rec.CrisisDetected {
		pipe.HIncrBy(ctx, key, "crisis:"+string(rec.CrisisType), 1)
	}
	// TTL is set once at creation. Later records must not refresh it, or a
	// continuously active session would never expire.
	pipe.ExpireNX(ctx, key, l.maxAge)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record: %w", err)
	}
	return nil
}

// Summary reads back the session's aggregate hash.
func (l *RedisLedger) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	fields, err := l.client.HGetAll(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis summary: %w", err)
	}

	summary := &Summary{SessionID: sessionID}
	if len(fields) == 0 {
		return summary, nil
	}

	summary.Interactions, _ = strconv.Atoi(fields["interactions"])
	summary.HighestRisk = risk.ParseLevel(fields["highest_risk"])
	if t, err := time.Parse(time.RFC3339Nano, fields["first_seen"]); err == nil {
		summary.FirstSeen = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["last_seen"]); err == nil {
		summary.LastSeen = t
	}

	for field, value := range fields {
		if !strings.HasPrefix(field, "crisis:") {
			continue
		}
		count, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		if summary.CrisisCounts == nil {
			summary.CrisisCounts = make(map[string]int)
		}
		summary.CrisisCounts[strings.TrimPrefix(field, "crisis:")] = count
	}
	return summary, nil
}

// Evict scans for sessions created longer than maxAge ago and deletes
// them. The key TTL normally handles this; Evict exists for on-demand
// sweeps with a tighter window.
func (l *RedisLedger) Evict(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	evicted := 0

	iter := l.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		firstSeen, err := l.client.HGet(ctx, key, "first_seen").Result()
		if err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, firstSeen)
		if err != nil || !t.Before(cutoff) {
			continue
		}
		if err := l.client.Del(ctx, key).Err(); err != nil {
			return evicted, fmt.Errorf("redis evict %s: %w", key, err)
		}
		evicted++
	}
	if err := iter.Err(); err != nil {
		return evicted, fmt.Errorf("redis scan: %w", err)
	}
	return evicted, nil
}

// Close closes the underlying client.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
