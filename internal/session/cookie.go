package session

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/jwalitptl/ubs-console/pkg/security"
)

const (
	DefaultCookieName = "ubs_console"
	sessionIDKey      = "sid"
)

type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
	Domain string
	MaxAge int
}

// Cookies reads and writes the browser cookie. It holds only the session id
// and flash messages; the token never reaches the browser.
type Cookies struct {
	store *sessions.CookieStore
	name  string
}

func NewCookies(cfg CookieConfig) (*Cookies, error) {
	keys, err := security.DeriveCookieKeys(cfg.Secret)
	if err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = DefaultCookieName
	}

	store := sessions.NewCookieStore(keys.HashKey, keys.BlockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   cfg.MaxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store, name: name}, nil
}

// get never fails: an undecodable cookie yields a fresh, empty session.
func (c *Cookies) get(r *http.Request) *sessions.Session {
	sess, err := c.store.Get(r, c.name)
	if err != nil {
		sess, _ = c.store.New(r, c.name)
		if sess == nil {
			sess = sessions.NewSession(c.store, c.name)
		}
	}
	return sess
}

// SessionID returns the id stored in the cookie, or "".
func (c *Cookies) SessionID(r *http.Request) string {
	id, _ := c.get(r).Values[sessionIDKey].(string)
	return id
}

func (c *Cookies) SetSessionID(w http.ResponseWriter, r *http.Request, id string) error {
	sess := c.get(r)
	sess.Values[sessionIDKey] = id
	return sess.Save(r, w)
}

// Clear drops the session id but keeps pending flashes.
func (c *Cookies) Clear(w http.ResponseWriter, r *http.Request) error {
	sess := c.get(r)
	delete(sess.Values, sessionIDKey)
	return sess.Save(r, w)
}

func (c *Cookies) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := c.get(r)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}

// Flashes pops every flash message.
func (c *Cookies) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	sess := c.get(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out, sess.Save(r, w)
}

// ClearWithFlash drops the session id and leaves msg for the next page in a
// single cookie write.
func (c *Cookies) ClearWithFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := c.get(r)
	delete(sess.Values, sessionIDKey)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}
