package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"checkin/internal/session"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix  = "session:"
	employeeKeyPrefix = "employee_sessions:"

	// revokeRetries bounds the optimistic-lock retry loop on Revoke.
	revokeRetries = 3
)

// RedisSessionStore persists sessions in Redis with a TTL matching the
// session's fixed expiry, so expired records disappear on their own. Revoke
// runs under WATCH so concurrent revokes of one session resolve to exactly
// one winner.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

type redisSession struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Device      string     `json:"device"`
	Fingerprint string     `json:"fingerprint"`
	ClientIP    string     `json:"client_ip"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

func (s *RedisSessionStore) Create(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(toRedisSession(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	key := sessionKey(sess.ID)
	employeeKey := employeeKeyPrefix + sess.EmployeeID.String()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	pipe.SAdd(ctx, employeeKey, sess.ID.String())
	pipe.ExpireAt(ctx, employeeKey, sess.ExpiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(payload)
}

// Revoke marks the session revoked, preserving its TTL. Concurrent revokes
// settle under WATCH: one caller wins, the rest see ErrAlreadyUsed.
func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	key := sessionKey(sessionID)

	var lastErr error
	for attempt := 0; attempt < revokeRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			payload, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return sentinel.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}

			sess, err := decodeSession(payload)
			if err != nil {
				return err
			}
			if sess.Revoked() {
				return sentinel.ErrAlreadyUsed
			}

			revokedAt := at
			sess.RevokedAt = &revokedAt
			updated, err := json.Marshal(toRedisSession(sess))
			if err != nil {
				return fmt.Errorf("marshal session: %w", err)
			}

			ttl, err := tx.TTL(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("session ttl: %w", err)
			}
			if ttl <= 0 {
				return sentinel.ErrNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (s *RedisSessionStore) ListByEmployee(ctx context.Context, employeeID id.EmployeeID) ([]*session.Session, error) {
	members, err := s.client.SMembers(ctx, employeeKeyPrefix+employeeID.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("list employee sessions: %w", err)
	}

	out := make([]*session.Session, 0, len(members))
	for _, member := range members {
		sessionID, err := id.ParseSessionID(member)
		if err != nil {
			continue
		}
		sess, err := s.FindByID(ctx, sessionID)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Session key expired; the set entry is stale.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func toRedisSession(sess *session.Session) redisSession {
	return redisSession{
		ID:          sess.ID.String(),
		EmployeeID:  sess.EmployeeID.String(),
		IssuedAt:    sess.IssuedAt,
		ExpiresAt:   sess.ExpiresAt,
		Device:      sess.Device,
		Fingerprint: sess.Fingerprint,
		ClientIP:    sess.ClientIP,
		RevokedAt:   sess.RevokedAt,
	}
}

func decodeSession(payload []byte) (*session.Session, error) {
	var stored redisSession
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	sessionID, err := id.ParseSessionID(stored.ID)
	if err != nil {
		return nil, fmt.Errorf("stored session id: %w", err)
	}
	employeeID, err := id.ParseEmployeeID(stored.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("stored employee id: %w", err)
	}

	return &session.Session{
		ID:          sessionID,
		EmployeeID:  employeeID,
		IssuedAt:    stored.IssuedAt,
		ExpiresAt:   stored.ExpiresAt,
		Device:      stored.Device,
		Fingerprint: stored.Fingerprint,
		ClientIP:    stored.ClientIP,
		RevokedAt:   stored.RevokedAt,
	}, nil
}
