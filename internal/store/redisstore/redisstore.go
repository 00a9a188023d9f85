package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Close() error { return s.rdb.Close() }

const oauthStatePrefix = "oauth:state:"

// SetOAuthState records a one-time login state nonce with a TTL.
func (s *Store) SetOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return s.rdb.Set(ctx, oauthStatePrefix+state, "1", ttl).Err()
}

// TakeOAuthState consumes the nonce. It reports true exactly once per
// state; replays and expired states come back false.
func (s *Store) TakeOAuthState(ctx context.Context, state string) (bool, error) {
	if err := s.rdb.GetDel(ctx, oauthStatePrefix+state).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
