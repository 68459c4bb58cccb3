package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/redis/go-redis/v9"
)

var ErrMissingSessionID = errors.New("session id is required")

// StoredSource is the campaign a visitor session was last attributed to.
type StoredSource struct {
	Code      string
	Timestamp time.Time
}

// storedSourcePayload is the serialized form; the timestamp travels as epoch ms.
type storedSourcePayload struct {
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

// AttributionExpiryPolicy decides when a stored source stops counting.
type AttributionExpiryPolicy struct {
	Window time.Duration
}

// DefaultAttributionExpiryPolicy keeps attributions for thirty days.
func DefaultAttributionExpiryPolicy() AttributionExpiryPolicy {
	return AttributionExpiryPolicy{Window: utils.DefaultAttributionWindow}
}

func (p AttributionExpiryPolicy) window() time.Duration {
	if p.Window <= 0 {
		return utils.DefaultAttributionWindow
	}
	return p.Window
}

// Expired reports whether src is older than the window at now.
func (p AttributionExpiryPolicy) Expired(src StoredSource, now time.Time) bool {
	return now.Sub(src.Timestamp) > p.window()
}

// SessionAttributionStore keeps one StoredSource per visitor session.
// Get applies the expiry policy lazily: an expired record is reported as
// absent and removed.
type SessionAttributionStore interface {
	Get(ctx context.Context, sessionID string) (*StoredSource, error)
	Set(ctx context.Context, sessionID, code string) (*StoredSource, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryAttributionStore is a process local SessionAttributionStore.
type MemoryAttributionStore struct {
	mu      sync.Mutex
	entries map[string]StoredSource
	policy  AttributionExpiryPolicy
	now     func() time.Time
}

func NewMemoryAttributionStore(policy AttributionExpiryPolicy, now func() time.Time) *MemoryAttributionStore {
	if now == nil {
		now = utils.UTCNow
	}
	return &MemoryAttributionStore{
		entries: make(map[string]StoredSource),
		policy:  policy,
		now:     now,
	}
}

func (s *MemoryAttributionStore) Get(ctx context.Context, sessionID string) (*StoredSource, error) {
	if sessionID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if s.policy.Expired(src, s.now()) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	return &src, nil
}

func (s *MemoryAttributionStore) Set(ctx context.Context, sessionID, code string) (*StoredSource, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	src := StoredSource{Code: code, Timestamp: s.now()}

	s.mu.Lock()
	s.entries[sessionID] = src
	s.mu.Unlock()

	return &src, nil
}

func (s *MemoryAttributionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// redisKeyGrace is added to the Redis TTL so keys outlive the lazy expiry check.
const redisKeyGrace = 24 * time.Hour

// RedisAttributionStore keeps stored sources in Redis as JSON values.
type RedisAttributionStore struct {
	client    redis.UniversalClient
	keyPrefix string
	policy    AttributionExpiryPolicy
	now       func() time.Time
}

func NewRedisAttributionStore(client redis.UniversalClient, keyPrefix string, policy AttributionExpiryPolicy, now func() time.Time) *RedisAttributionStore {
	if keyPrefix == "" {
		keyPrefix = "attribution:"
	}
	if now == nil {
		now = utils.UTCNow
	}
	return &RedisAttributionStore{
		client:    client,
		keyPrefix: keyPrefix,
		policy:    policy,
		now:       now,
	}
}

func (s *RedisAttributionStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *RedisAttributionStore) Get(ctx context.Context, sessionID string) (*StoredSource, error) {
	if sessionID == "" {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read attribution: %w", err)
	}

	var payload storedSourcePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Code == "" {
		// unreadable records behave like expired ones
		_ = s.client.Del(ctx, s.key(sessionID)).Err()
		return nil, nil
	}

	src := StoredSource{Code: payload.Code, Timestamp: time.UnixMilli(payload.Timestamp).UTC()}
	if s.policy.Expired(src, s.now()) {
		if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
			return nil, fmt.Errorf("failed to clear expired attribution: %w", err)
		}
		return nil, nil
	}
	return &src, nil
}

func (s *RedisAttributionStore) Set(ctx context.Context, sessionID, code string) (*StoredSource, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	src := StoredSource{Code: code, Timestamp: s.now()}
	raw, err := json.Marshal(storedSourcePayload{Code: code, Timestamp: src.Timestamp.UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode attribution: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sessionID), raw, s.policy.window()+redisKeyGrace).Err(); err != nil {
		return nil, fmt.Errorf("failed to store attribution: %w", err)
	}
	// the stored instant has millisecond precision
	src.Timestamp = time.UnixMilli(src.Timestamp.UnixMilli()).UTC()
	return &src, nil
}

func (s *RedisAttributionStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear attribution: %w", err)
	}
	return nil
}
