package play

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/quiz"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is being updated")
)

// unlockScript deletes the lock only if we still own it.
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Record is a play session as stored in Redis.
type Record struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	StartedAt time.Time     `json:"started_at"`
	Snapshot  quiz.Snapshot `json:"snapshot"`
}

// Store keeps in-flight sessions in Redis with a sliding TTL and per-session locks.
type Store struct {
	redis   *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	logger  zerolog.Logger
}

const defaultLockTTL = 30 * time.Second

// NewStore creates a session store backed by Redis.
func NewStore(client *redis.Client, cfg config.Session, logger zerolog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &Store{
		redis:   client,
		ttl:     cfg.TTL,
		lockTTL: cfg.LockTTL,
		logger:  logger,
	}
}

func sessionKey(id uuid.UUID) string { return fmt.Sprintf("play:session:%s", id) }
func lockKey(id uuid.UUID) string    { return fmt.Sprintf("play:lock:%s", id) }

// Lock acquires the transition lock for a session. Callers must invoke the returned unlock.
func (s *Store) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()

	acquired, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionBusy
	}

	unlock := func() {
		if err := unlockScript.Run(context.WithoutCancel(ctx), s.redis, []string{key}, token).Err(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("release session lock failed")
		}
	}
	return unlock, nil
}

// Save writes the record and refreshes its TTL.
func (s *Store) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(rec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load fetches a record, returning ErrSessionNotFound when it is missing or expired.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

// Delete drops a session.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}
