package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process. Sessions do not survive a restart
// and are not shared between replicas.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &MemoryStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Save(_ context.Context, sess *Session, ttl time.Duration) error {
	cp := *sess
	s.cache.Set(sess.ID, &cp, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*Session)
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
