package presence

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tracker records which users sent a heartbeat recently.
type Tracker interface {
	MarkOnline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
	OnlineMany(ctx context.Context, userIDs []string) (map[string]bool, error)
}

func key(userID string) string {
	return fmt.Sprintf("mytrade:presence:%s", userID)
}

type RedisTracker struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisTracker(client *goredis.Client, ttl time.Duration, logger *zap.Logger) *RedisTracker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisTracker{client: client, ttl: ttl, logger: logger}
}

func (t *RedisTracker) MarkOnline(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := t.client.Set(ctx, key(userID), time.Now().UTC().Unix(), t.ttl).Err(); err != nil {
		t.logger.Warn("presence heartbeat failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	return nil
}

func (t *RedisTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	n, err := t.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineMany checks every id in one round trip. Blank and duplicate ids are
// skipped.
func (t *RedisTracker) OnlineMany(ctx context.Context, userIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	pipe := t.client.Pipeline()
	cmds := make(map[string]*goredis.IntCmd, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, seen := cmds[id]; seen {
			continue
		}
		cmds[id] = pipe.Exists(ctx, key(id))
	}
	if len(cmds) == 0 {
		return result, nil
	}

	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		return nil, err
	}
	for id, cmd := range cmds {
		result[id] = cmd.Val() > 0
	}
	return result, nil
}

// NopTracker is used when redis is disabled: heartbeats are dropped and
// everyone reads as offline.
type NopTracker struct{}

func (NopTracker) MarkOnline(context.Context, string) error { return nil }

func (NopTracker) IsOnline(context.Context, string) (bool, error) { return false, nil }

func (NopTracker) OnlineMany(_ context.Context, userIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			result[id] = false
		}
	}
	return result, nil
}
