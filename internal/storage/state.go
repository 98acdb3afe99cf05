package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vrakshhq/vraksh/internal/auth"
)

const stateKeyPrefix = "oauth:state:"

// OAuthStateStore implements auth.StateStore on Redis. States expire via
// key TTL and are removed on first consumption.
type OAuthStateStore struct {
	client *redis.Client
}

// NewOAuthStateStore creates a Redis-backed state store.
func NewOAuthStateStore(client *redis.Client) *OAuthStateStore {
	return &OAuthStateStore{client: client}
}

func (s *OAuthStateStore) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// ConsumeState deletes the state as it reads it, so a replayed callback
// fails with ErrStateNotFound.
func (s *OAuthStateStore) ConsumeState(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrStateNotFound
		}
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}
