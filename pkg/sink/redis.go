package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/acipush/pkg/report"
)

// Redis key prefixes. Row status lives at ACIPUSH_STATUS|<ref>, the last
// run summary of a command at ACIPUSH_RUN|<command>.
const (
	StatusTable = "ACIPUSH_STATUS"
	RunTable    = "ACIPUSH_RUN"
)

// Redis writes outcomes as hashes so dashboards and other tools can pick
// them up.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and selects db. Entries expire after ttl; zero
// keeps them.
func NewRedis(addr string, db int, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		ttl: ttl,
	}
}

// Connect tests the connection.
func (r *Redis) Connect(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to status redis: %w", err)
	}
	return nil
}

// Close closes the connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) WriteOutcome(ctx context.Context, ref string, o report.Outcome) error {
	key := StatusKey(ref)
	return r.set(ctx, key, map[string]interface{}{
		"status":  o.Status(),
		"color":   o.Color(),
		"kind":    string(o.Kind),
		"detail":  o.Detail,
		"updated": time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Redis) WriteRunSummary(ctx context.Context, command string, agg report.Aggregate, message string) error {
	key := RunKey(command)
	return r.set(ctx, key, map[string]interface{}{
		"aggregate": string(agg),
		"message":   message,
		"updated":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Redis) set(ctx context.Context, key string, fields map[string]interface{}) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// StatusKey is the hash key of a row's status.
func StatusKey(ref string) string {
	return StatusTable + "|" + ref
}

// RunKey is the hash key of a command's last run summary.
func RunKey(command string) string {
	return RunTable + "|" + command
}
