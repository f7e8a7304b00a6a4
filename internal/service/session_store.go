package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/cravewise/backend/internal/types"
)

// SessionTTL bounds how long an idle session survives.
const SessionTTL = 24 * time.Hour

// DefaultLockTTL releases an abandoned in-flight lock.
const DefaultLockTTL = 2 * time.Minute

// lockSlack is added on top of the completion timeout so a Redis lock always
// outlives the call it guards.
const lockSlack = 30 * time.Second

// LockTTLFor returns the Redis lock TTL for completions bounded by
// callTimeout. It never drops below DefaultLockTTL.
func LockTTLFor(callTimeout time.Duration) time.Duration {
	if ttl := callTimeout + lockSlack; ttl > DefaultLockTTL {
		return ttl
	}
	return DefaultLockTTL
}

// unlockScript deletes the lock only while it still holds the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore keeps sessions in Redis.
type RedisSessionStore struct {
	redis   *redis.Client
	lockTTL time.Duration
}

// NewRedisSessionStore creates a Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client, lockTTL time.Duration) *RedisSessionStore {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RedisSessionStore{redis: client, lockTTL: lockTTL}
}

func sessionKey(id string) string { return fmt.Sprintf("craving:session:%s", id) }
func lockKey(id string) string    { return fmt.Sprintf("craving:session:%s:lock", id) }

// Create saves a new session
func (s *RedisSessionStore) Create(ctx context.Context, sess *types.Session) error {
	return s.Save(ctx, sess)
}

// Get retrieves a session from Redis
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL
func (s *RedisSessionStore) Save(ctx context.Context, sess *types.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

// Lock takes the in-flight lock with SETNX under a fresh random token.
func (s *RedisSessionStore) Lock(ctx context.Context, id string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.redis.SetNX(ctx, lockKey(id), token, s.lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to lock session: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases the in-flight lock if token still owns it.
func (s *RedisSessionStore) Unlock(ctx context.Context, id, token string) error {
	if err := unlockScript.Run(ctx, s.redis, []string{lockKey(id)}, token).Err(); err != nil {
		return fmt.Errorf("failed to unlock session: %w", err)
	}
	return nil
}

// MemorySessionStore is the single-process fallback used when Redis is not
// configured. Its locks do not expire: the holder always releases them on
// return, and a crash loses the whole store anyway.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	locks    map[string]string
	now      func() time.Time
}

type memorySession struct {
	data    []byte
	expires time.Time
}

// NewMemorySessionStore creates an in-process SessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		locks:    make(map[string]string),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context, sess *types.Session) error {
	return m.Save(ctx, sess)
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*types.Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok && m.now().After(entry.expires) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var sess types.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess *types.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memorySession{data: data, expires: m.now().Add(SessionTTL)}
	return nil
}

func (m *MemorySessionStore) Lock(_ context.Context, id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	m.locks[id] = token
	return token, true, nil
}

func (m *MemorySessionStore) Unlock(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] == token {
		delete(m.locks, id)
	}
	return nil
}
