//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"checkin/internal/session"
	"checkin/internal/session/store"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisSessionStore
}

func TestRedisSessionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession(employeeID id.EmployeeID) *session.Session {
	now := time.Now()
	return &session.Session{
		ID:          id.NewSessionID(),
		EmployeeID:  employeeID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(8 * time.Hour),
		Device:      "Chrome on Mac OS X",
		Fingerprint: "fp-hash",
		ClientIP:    "10.0.0.7",
	}
}

func (s *RedisSessionStoreSuite) TestCreateSetsTTLFromExpiry() {
	ctx := context.Background()
	sess := makeSession(id.NewEmployeeID())
	sess.ExpiresAt = time.Now().Add(time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	ttl, err := s.redis.Client.TTL(ctx, "session:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 55*time.Minute)
	s.LessOrEqual(ttl, time.Hour)
}

func (s *RedisSessionStoreSuite) TestCreateRejectsAlreadyExpired() {
	ctx := context.Background()
	sess := makeSession(id.NewEmployeeID())
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	s.ErrorIs(s.store.Create(ctx, sess), sentinel.ErrExpired)
}

func (s *RedisSessionStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sess := makeSession(id.NewEmployeeID())
	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(sess.EmployeeID, found.EmployeeID)
	s.Equal(sess.Device, found.Device)
	s.Equal(sess.Fingerprint, found.Fingerprint)
	s.Equal(sess.ClientIP, found.ClientIP)
	s.Equal(sess.ExpiresAt.UnixNano(), found.ExpiresAt.UnixNano())
	s.Nil(found.RevokedAt)
}

func (s *RedisSessionStoreSuite) TestConcurrentRevokeHasOneWinner() {
	ctx := context.Background()
	sess := makeSession(id.NewEmployeeID())
	s.Require().NoError(s.store.Create(ctx, sess))

	const goroutines = 20
	var wg sync.WaitGroup
	var winners atomic.Int32
	var alreadyRevoked atomic.Int32
	var unexpected atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.store.Revoke(ctx, sess.ID, time.Now()); {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, redis.TxFailedErr):
				alreadyRevoked.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one revoke should win")
	s.Equal(int32(goroutines-1), alreadyRevoked.Load())
	s.Equal(int32(0), unexpected.Load())

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.True(found.Revoked())
}

func (s *RedisSessionStoreSuite) TestRevokePreservesTTL() {
	ctx := context.Background()
	sess := makeSession(id.NewEmployeeID())
	sess.ExpiresAt = time.Now().Add(time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	key := "session:" + sess.ID.String()
	initialTTL, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)

	s.Require().NoError(s.store.Revoke(ctx, sess.ID, time.Now()))

	newTTL, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.InDelta(initialTTL.Seconds(), newTTL.Seconds(), 5.0)
}

func (s *RedisSessionStoreSuite) TestListByEmployeeSkipsExpiredEntries() {
	ctx := context.Background()
	employeeID := id.NewEmployeeID()

	longLived := makeSession(employeeID)
	s.Require().NoError(s.store.Create(ctx, longLived))

	shortLived := makeSession(employeeID)
	shortLived.ExpiresAt = time.Now().Add(time.Second)
	s.Require().NoError(s.store.Create(ctx, shortLived))

	time.Sleep(1500 * time.Millisecond)

	sessions, err := s.store.ListByEmployee(ctx, employeeID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(longLived.ID, sessions[0].ID)
}
