package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizctl/internal/domain"
)

// SessionStore keeps the session as one hash:
//
//	HSET quizctl:session:{profile} token … email … role …
//
// Save replaces the whole hash inside MULTI/EXEC so readers never observe a
// partial session. The hash never expires; a stored token stays until Clear.
type SessionStore struct {
	client  *redis.Client
	profile string
}

func NewSessionStore(client *redis.Client, profile string) *SessionStore {
	if profile == "" {
		profile = "default"
	}
	return &SessionStore{client: client, profile: profile}
}

func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	if fields["token"] == "" {
		return domain.Session{}, domain.ErrNotLoggedIn
	}
	return domain.Session{
		Token: fields["token"],
		Email: fields["email"],
		Role:  domain.Role(fields["role"]),
	}, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	key := s.key()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			"token": session.Token,
			"email": session.Email,
			"role":  string(session.Role),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key() string {
	return "quizctl:session:" + s.profile
}
