package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/models"
)

const (
	keyPrefix     = "sokrate:profile:"
	versionPrefix = "sokrate:profile-version:"
)

// minVersionTTL keeps version keys around far longer than any fetch can take.
const minVersionTTL = 24 * time.Hour

// missing is stored for users without a profile so repeated misses stay cheap.
const missing = "null"

// RedisLoader puts a Redis tier in front of another Loader.
type RedisLoader struct {
	client *redis.Client
	next   Loader
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLoader wraps next with a Redis read-through tier.
func NewRedisLoader(client *redis.Client, next Loader, ttl time.Duration, logger *zap.Logger) *RedisLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLoader{client: client, next: next, ttl: ttl, logger: logger}
}

// NewRedisClient parses url, connects and pings. It returns (nil, nil) when url
// is empty so callers can treat Redis as optional.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// GetProfile reads Redis first and falls back to the wrapped loader. Redis
// errors degrade to a direct read.
func (l *RedisLoader) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	raw, err := l.client.Get(ctx, keyPrefix+userID).Result()
	switch {
	case err == nil:
		if raw == missing {
			return nil, nil
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		l.logger.Warn("Discarding undecodable cached profile", zap.String("user_id", userID))
	case errors.Is(err, redis.Nil):
	default:
		l.logger.Warn("Redis profile read failed", zap.String("user_id", userID), zap.Error(err))
	}

	// The version is read before the source so that an invalidation landing
	// during the fetch is detected at write time.
	version, err := l.version(ctx, l.client, userID)
	if err != nil {
		l.logger.Warn("Redis profile version read failed", zap.String("user_id", userID), zap.Error(err))
	}

	p, err := l.next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return p, nil
	}

	value := []byte(missing)
	if p != nil {
		if value, err = json.Marshal(p); err != nil {
			return p, nil
		}
	}
	if err := l.store(ctx, userID, *version, value); err != nil {
		if errors.Is(err, errStaleFetch) || errors.Is(err, redis.TxFailedErr) {
			l.logger.Debug("Skipping Redis write for profile invalidated during fetch", zap.String("user_id", userID))
		} else {
			l.logger.Warn("Redis profile write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return p, nil
}

var errStaleFetch = errors.New("profile invalidated during fetch")

// stringGetter is satisfied by *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// version returns the invalidation version of userID ("" when never
// invalidated), or nil when Redis could not be read.
func (l *RedisLoader) version(ctx context.Context, c stringGetter, userID string) (*string, error) {
	v, err := c.Get(ctx, versionPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		v, err = "", nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// store writes value only if userID's version still equals version. WATCH
// makes the check and the write atomic against a concurrent Invalidate.
func (l *RedisLoader) store(ctx context.Context, userID, version string, value []byte) error {
	verKey := versionPrefix + userID
	return l.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := l.version(ctx, tx, userID)
		if err != nil {
			return err
		}
		if *cur != version {
			return errStaleFetch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+userID, value, l.ttl)
			return nil
		})
		return err
	}, verKey)
}

// Invalidate removes the Redis copy of userID's profile and bumps its version
// so that fetches already in flight do not write it back.
func (l *RedisLoader) Invalidate(ctx context.Context, userID string) error {
	verKey := versionPrefix + userID
	versionTTL := l.ttl * 2
	if versionTTL < minVersionTTL {
		versionTTL = minVersionTTL
	}
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, keyPrefix+userID)
		return nil
	})
	return err
}
