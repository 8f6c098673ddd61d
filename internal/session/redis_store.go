package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/ubs-console/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ubs-console:session:"

// RedisStore shares sessions between console replicas.
type RedisStore struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

func NewRedisStore(client *redis.Client, m *metrics.Metrics) *RedisStore {
	return &RedisStore{client: client, metrics: m}
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.observe("set", func() error {
		return s.client.Set(ctx, keyPrefix+sess.ID, payload, ttl).Err()
	})
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	var raw []byte
	err := s.observe("get", func() error {
		var err error
		raw, err = s.client.Get(ctx, keyPrefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.observe("del", func() error {
		return s.client.Del(ctx, keyPrefix+id).Err()
	})
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		status := "ok"
		if err != nil && !errors.Is(err, ErrNotFound) {
			status = "error"
		}
		s.metrics.RedisOperations.WithLabelValues(op, status).Inc()
		s.metrics.RedisLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	return err
}
