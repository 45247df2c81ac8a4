package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yklab/tutor-platform/internal/tutoring"
)

// Store caches SessionPerformance snapshots so frequent performance reads
// skip the database. Cache misses are (nil, nil); callers fall through to
// storage.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func perfKey(sessionID string) string {
	return "perf:" + sessionID
}

func (s *Store) GetPerformance(ctx context.Context, sessionID string) (*tutoring.SessionPerformance, error) {
	raw, err := s.client.Get(ctx, perfKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p tutoring.SessionPerformance
	if err := json.Unmarshal(raw, &p); err != nil {
		// stale or corrupt entry: drop it and report a miss
		_ = s.client.Del(ctx, perfKey(sessionID)).Err()
		return nil, nil
	}
	return &p, nil
}

func (s *Store) SetPerformance(ctx context.Context, p *tutoring.SessionPerformance) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, perfKey(p.SessionID), raw, s.ttl).Err()
}

func (s *Store) DeletePerformance(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, perfKey(sessionID)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
