// Package sessionstore provides a Redis-backed implementation of the
// sessionstore.Store contract. Session state is ephemeral UI state, so every
// write refreshes a TTL instead of living forever.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

const (
	keyPrefix  = "orgsession:"
	sessionTTL = 24 * time.Hour
)

// Store implements sessionstore.Store on Redis, using WATCH/MULTI for the
// compare-and-set version discipline.
type Store struct {
	client *redis.Client
}

var _ sessionstore.Store = (*Store)(nil)

// New connects to the Redis at redisURL and pings it.
func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func key(userID domain.UserID) string {
	return keyPrefix + string(userID)
}

func (s *Store) Load(ctx context.Context, userID domain.UserID) (sessionstore.State, error) {
	payload, err := s.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return sessionstore.State{}, sessionstore.ErrNotFound
	}
	if err != nil {
		return sessionstore.State{}, fmt.Errorf("load session state: %w", err)
	}
	var st sessionstore.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return sessionstore.State{}, fmt.Errorf("unmarshal session state: %w", err)
	}
	return st, nil
}

func (s *Store) Save(ctx context.Context, st sessionstore.State) error {
	k := key(st.UserID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if st.Version != 0 {
				return sessionstore.ErrVersionConflict
			}
		case err != nil:
			return fmt.Errorf("read session state: %w", err)
		default:
			var existing sessionstore.State
			if err := json.Unmarshal([]byte(cur), &existing); err != nil {
				return fmt.Errorf("unmarshal session state: %w", err)
			}
			if existing.Version != st.Version {
				return sessionstore.ErrVersionConflict
			}
		}

		next := st
		next.Version++
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, sessionTTL)
			return nil
		})
		return err
	}, k)

	if errors.Is(err, redis.TxFailedErr) {
		// Someone else wrote between WATCH and EXEC.
		return sessionstore.ErrVersionConflict
	}
	return err
}

func (s *Store) Delete(ctx context.Context, userID domain.UserID) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}
