package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/parking-service/internal/domain"
)

// ErrSessionNotFound marks a token id absent from the registry: either it
// was revoked or it expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry tracks issued tokens so that logout and admin revocation
// take effect before the JWT itself expires.
type SessionRegistry interface {
	Register(ctx context.Context, token domain.IssuedToken) error
	Lookup(ctx context.Context, tokenID string) (string, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeSubject(ctx context.Context, subjectID string) error
}

type redisSessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry returns a Redis-backed registry.
func NewSessionRegistry(client *redis.Client) SessionRegistry {
	return &redisSessionRegistry{client: client}
}

func sessionKey(tokenID string) string {
	return "session:" + tokenID
}

func subjectKey(subjectID string) string {
	return "session_subject:" + subjectID
}

func (r *redisSessionRegistry) Register(ctx context.Context, token domain.IssuedToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired at %s", token.ExpiresAt)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(token.ID), token.SubjectID, ttl)
	pipe.SAdd(ctx, subjectKey(token.SubjectID), token.ID)
	pipe.Expire(ctx, subjectKey(token.SubjectID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisSessionRegistry) Lookup(ctx context.Context, tokenID string) (string, error) {
	subjectID, err := r.client.Get(ctx, sessionKey(tokenID)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return subjectID, nil
}

func (r *redisSessionRegistry) Revoke(ctx context.Context, tokenID string) error {
	subjectID, err := r.client.Get(ctx, sessionKey(tokenID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(tokenID))
	pipe.SRem(ctx, subjectKey(subjectID), tokenID)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeSubject drops every live session for the subject. Used when an
// administrator revokes a staff member's duty access.
func (r *redisSessionRegistry) RevokeSubject(ctx context.Context, subjectID string) error {
	tokenIDs, err := r.client.SMembers(ctx, subjectKey(subjectID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if len(tokenIDs) == 0 {
		return nil
	}
	pipe := r.client.TxPipeline()
	for _, id := range tokenIDs {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, subjectKey(subjectID))
	_, err = pipe.Exec(ctx)
	return err
}
