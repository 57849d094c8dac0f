// Package session keeps login sessions in redis. A session is an opaque
// random token mapped to a user id; each user's tokens are tracked in a set
// so they can all be revoked at once.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("session not found")

// Session is what a token resolves to.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"uid"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Store is the session backend used by the auth middleware and handlers.
type Store interface {
	Create(ctx context.Context, userID int64) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// RedisStore implements Store on a redis client.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func key(token string) string { return "notebooks:sess:" + token }

func userSetKey(userID int64) string {
	return "notebooks:user_sessions:" + strconv.FormatInt(userID, 10)
}

// NewToken returns a fresh random session token.
func NewToken() string {
	return uuid.NewString()
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		Token:     NewToken(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(sess.Token), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(userID), sess.Token)
	pipe.Expire(ctx, userSetKey(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decode(token, b)
}

func decode(token string, b []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	sess, _ := s.Get(ctx, token)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if sess != nil {
		pipe.SRem(ctx, userSetKey(sess.UserID), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	tokens, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list sessions: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, key(t))
	}
	pipe.Del(ctx, userSetKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
