package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer encrypts and authenticates the token cookie value.
type Sealer struct {
	key    [32]byte
	nonces io.Reader
}

// NewSealer derives a key from secret. An empty secret yields a random key,
// so tokens do not survive a restart.
func NewSealer(secret string) (*Sealer, error) {
	s := &Sealer{nonces: rand.Reader}
	if secret == "" {
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("generating cookie key: %w", err)
		}
		return s, nil
	}
	s.key = sha256.Sum256([]byte(secret))
	return s, nil
}

// Seal encrypts token for storage in a cookie.
func (s *Sealer) Seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.nonces, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open returns the token sealed in value.
func (s *Sealer) Open(value string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decoding cookie: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("cookie too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("cookie authentication failed")
	}
	return string(plain), nil
}

// CookieOptions configures the token cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// CookieStore persists the token in the visitor's browser. It is bound to
// one request.
type CookieStore struct {
	c      *gin.Context
	sealer *Sealer
	opts   CookieOptions
}

// NewCookieStore binds the store to c.
func NewCookieStore(c *gin.Context, sealer *Sealer, opts CookieOptions) *CookieStore {
	return &CookieStore{c: c, sealer: sealer, opts: opts}
}

// Load returns the stored token, or "" when absent or tampered with.
func (s *CookieStore) Load() string {
	value, err := s.c.Cookie(s.opts.Name)
	if err != nil || value == "" {
		return ""
	}
	token, err := s.sealer.Open(value)
	if err != nil {
		s.Remove()
		return ""
	}
	return token
}

// Save writes token to the cookie. Nothing is written when sealing fails.
func (s *CookieStore) Save(token string) error {
	value, err := s.sealer.Seal(token)
	if err != nil {
		return fmt.Errorf("sealing token cookie: %w", err)
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.opts.Name, value, int(s.opts.MaxAge.Seconds()), "/", "", s.opts.Secure, true)
	return nil
}

// Remove deletes the cookie.
func (s *CookieStore) Remove() {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.opts.Name, "", -1, "/", "", s.opts.Secure, true)
}
