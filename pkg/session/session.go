// Package session keeps per-visitor state (login, flashes, small values) in a
// signed cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultCookieName = "forum_session"
	contextKey        = "session"
)

var ErrInvalidSession = errors.New("invalid session cookie")

type payload struct {
	ID      string              `json:"sid"`
	UserID  uint                `json:"uid,omitempty"`
	Flashes map[string][]string `json:"fl,omitempty"`
	Values  map[string]string   `json:"v,omitempty"`
}

type claims struct {
	Payload payload `json:"s"`
	jwt.RegisteredClaims
}

type Store struct {
	secret     []byte
	ttl        time.Duration
	secure     bool
	cookieName string
}

func NewStore(secret string, ttl time.Duration, secure bool) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		secret:     []byte(secret),
		ttl:        ttl,
		secure:     secure,
		cookieName: DefaultCookieName,
	}
}

// Middleware loads the session from the request cookie, starting a new one
// when the cookie is missing, expired or tampered with.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, s.load(c))
		c.Next()
	}
}

func (s *Store) load(c *gin.Context) *Session {
	raw, err := c.Cookie(s.cookieName)
	if err == nil && raw != "" {
		if data, err := s.decode(raw); err == nil {
			return &Session{data: data, store: s}
		}
	}
	return &Session{data: payload{ID: uuid.NewString()}, store: s, dirty: true}
}

func (s *Store) encode(p payload) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *Store) decode(raw string) (payload, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || cl.Payload.ID == "" {
		return payload{}, ErrInvalidSession
	}
	return cl.Payload, nil
}

// Get returns the request session. Outside of Middleware it returns a
// detached session that is never written back.
func Get(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	sess := &Session{data: payload{ID: uuid.NewString()}}
	c.Set(contextKey, sess)
	return sess
}

type Session struct {
	data  payload
	store *Store
	dirty bool
}

func (s *Session) ID() string {
	return s.data.ID
}

func (s *Session) UserID() uint {
	return s.data.UserID
}

func (s *Session) SetUserID(id uint) {
	s.data.UserID = id
	s.dirty = true
}

// Regenerate issues a new session id and keeps the stored values.
func (s *Session) Regenerate() {
	s.data.ID = uuid.NewString()
	s.dirty = true
}

// Clear drops everything, flashes included, and issues a new id.
func (s *Session) Clear() {
	s.data = payload{ID: uuid.NewString()}
	s.dirty = true
}

func (s *Session) AddFlash(kind, message string) {
	if s.data.Flashes == nil {
		s.data.Flashes = make(map[string][]string)
	}
	s.data.Flashes[kind] = append(s.data.Flashes[kind], message)
	s.dirty = true
}

// PopFlashes returns pending flash messages and removes them from the session.
func (s *Session) PopFlashes() map[string][]string {
	flashes := s.data.Flashes
	if len(flashes) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return flashes
}

func (s *Session) Get(key string) string {
	return s.data.Values[key]
}

func (s *Session) Set(key, value string) {
	if s.data.Values == nil {
		s.data.Values = make(map[string]string)
	}
	s.data.Values[key] = value
	s.dirty = true
}

func (s *Session) Pop(key string) string {
	value, ok := s.data.Values[key]
	if ok {
		s.Delete(key)
	}
	return value
}

func (s *Session) Delete(key string) {
	if _, ok := s.data.Values[key]; !ok {
		return
	}
	delete(s.data.Values, key)
	s.dirty = true
}

// Save writes the session cookie when something changed.
func (s *Session) Save(c *gin.Context) error {
	if !s.dirty || s.store == nil {
		return nil
	}
	raw, err := s.store.encode(s.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.store.cookieName, raw, int(s.store.ttl.Seconds()), "/", "", s.store.secure, true)
	s.dirty = false
	return nil
}
