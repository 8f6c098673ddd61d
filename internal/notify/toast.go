// Package notify is the per-session notification overlay: toasts and a
// queue of confirm/prompt dialogs.
package notify

import (
	"encoding/json"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ToastType string

const (
	TypeInfo    ToastType = "info"
	TypeSuccess ToastType = "success"
	TypeError   ToastType = "error"
	TypeWarning ToastType = "warning"
)

// DefaultDuration is how long helper toasts stay on screen.
const DefaultDuration = 4 * time.Second

// Toast is a fire-and-forget message. A zero Duration keeps it until dismissed.
type Toast struct {
	ID        string        `json:"id"`
	Type      ToastType     `json:"type"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`

	seq uint64
}

func (t Toast) MarshalJSON() ([]byte, error) {
	type alias Toast
	return json.Marshal(struct {
		alias
		DurationMS int64 `json:"duration_ms"`
	}{alias(t), t.Duration.Milliseconds()})
}

type toastStore struct {
	cache *cache.Cache
	seq   atomic.Uint64
}

func newToastStore(cleanup time.Duration) *toastStore {
	return &toastStore{cache: cache.New(cache.NoExpiration, cleanup)}
}

func toastKey(sessionID, id string) string {
	return sessionID + "|" + id
}

func (s *toastStore) add(sessionID string, t Toast) Toast {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Type == "" {
		t.Type = TypeInfo
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.seq = s.seq.Add(1)
	ttl := t.Duration
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(toastKey(sessionID, t.ID), t, ttl)
	return t
}

func (s *toastStore) list(sessionID string) []Toast {
	prefix := sessionID + "|"
	var out []Toast
	for k, item := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, item.Object.(Toast))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

func (s *toastStore) dismiss(sessionID, id string) bool {
	key := toastKey(sessionID, id)
	if _, ok := s.cache.Get(key); !ok {
		return false
	}
	s.cache.Delete(key)
	return true
}

func (s *toastStore) clear(sessionID string) {
	prefix := sessionID + "|"
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Delete(k)
		}
	}
}
