package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore shares mode flags between instances. Keys carry no TTL: a
// session lives until the key is removed out of band.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if prefix == "" {
		prefix = "autosales:mode"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		tracer: otel.Tracer("autosales.internal.session"),
	}
}

func (s *RedisStore) key(userID int64) string {
	return s.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Mode(ctx context.Context, userID int64) (Mode, error) {
	ctx, span := s.tracer.Start(ctx, "session.load_mode")
	defer span.End()

	raw, err := s.redis.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return DefaultMode, nil
	}
	if err != nil {
		span.RecordError(err)
		return DefaultMode, fmt.Errorf("session: failed to load mode: %w", err)
	}
	mode, err := ParseMode(raw)
	if err != nil {
		span.RecordError(err)
		return DefaultMode, fmt.Errorf("session: stored mode for %d: %w", userID, err)
	}
	return mode, nil
}

func (s *RedisStore) SetMode(ctx context.Context, userID int64, mode Mode) error {
	ctx, span := s.tracer.Start(ctx, "session.save_mode")
	defer span.End()

	if _, err := ParseMode(mode.String()); err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(userID), mode.String(), 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist mode: %w", err)
	}
	return nil
}
