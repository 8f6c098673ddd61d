// Package session holds console sessions: the API token and cached user
// behind an opaque id stored in the browser cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (s *Session) Role() model.Role {
	return s.User.EffectiveRole()
}

// HasRole reports whether the session role is one of roles.
func (s *Session) HasRole(roles ...model.Role) bool {
	role := s.Role()
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions until their TTL runs out.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
