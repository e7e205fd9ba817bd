package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// replay is what Redis holds under an idempotency key. A pending entry marks
// a request whose handler has not finished yet.
type replay struct {
	Pending  bool      `json:"pending"`
	Status   int       `json:"status,omitempty"`
	Body     []byte    `json:"body,omitempty"`
	Digest   string    `json:"digest"`
	StoredAt time.Time `json:"stored_at"`
}

func (r replay) done() bool { return !r.Pending && r.Status != 0 && len(r.Body) > 0 }

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func replayKey(method, path, actorID, requestID string) string {
	return strings.Join([]string{"idemp", "compliance", strings.ToLower(method), path, actorID, requestID}, ":")
}

// claim reserves key for this request. false means someone already holds it.
func (s *replayStore) claim(ctx context.Context, key, digest string) (bool, error) {
	payload, err := json.Marshal(replay{Pending: true, Digest: digest, StoredAt: nowUTC()})
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, claimTTL).Result()
}

func (s *replayStore) lookup(ctx context.Context, key string) (replay, error) {
	var r replay
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(raw, &r)
	return r, err
}

func (s *replayStore) commit(ctx context.Context, key string, r replay) error {
	r.Pending = false
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
