// Package auth provides the session credential for the todo server: lookup,
// expiry checks, login and invalidation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/hy4ri/todolist-tui/internal/api"
	"github.com/hy4ri/todolist-tui/internal/config"
)

// CredentialError is a local credential failure. It counts as an
// authorization failure so callers treat it like a 401.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string        { return e.Reason }
func (e *CredentialError) IsUnauthorized() bool { return true }

var (
	// ErrNoCredential is returned when no session token is available.
	ErrNoCredential = &CredentialError{Reason: "not logged in (run with --login)"}
	// ErrCredentialExpired is returned when the stored token has expired.
	ErrCredentialExpired = &CredentialError{Reason: "session expired (run with --login)"}
)

// Claims are the claims the todo server puts in its session tokens.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session describes the current credential.
type Session struct {
	Username  string
	ExpiresAt time.Time // zero for opaque tokens
	Source    config.TokenSource
}

// Authenticator exchanges account credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// Provider supplies the bearer token for API requests. It implements
// oauth2.TokenSource and task.Credentials.
type Provider struct {
	mu       sync.Mutex
	token    string
	source   config.TokenSource
	loaded   bool
	rejected bool // the env token was rejected by the server
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a provider. The token is looked up lazily.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token implements oauth2.TokenSource. Expired JWTs are refused locally so no
// request is sent with them.
func (p *Provider) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.loadLocked(); err != nil {
		return nil, err
	}
	if p.token == "" || p.rejected {
		return nil, ErrNoCredential
	}

	tok := &oauth2.Token{AccessToken: p.token, TokenType: "Bearer"}
	if claims, ok := parseClaims(p.token); ok && claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
		if !p.now().Before(tok.Expiry) {
			return nil, ErrCredentialExpired
		}
	}
	return tok, nil
}

// Session returns details of the current credential, or ErrNoCredential.
func (p *Provider) Session() (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.loadLocked(); err != nil {
		return Session{}, err
	}
	if p.token == "" || p.rejected {
		return Session{}, ErrNoCredential
	}

	s := Session{Source: p.source}
	if claims, ok := parseClaims(p.token); ok {
		s.Username = claims.Username
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return s, nil
}

// Invalidate implements task.Credentials. The stored token is removed; a
// token from the environment cannot be removed and is ignored for the rest
// of the session instead.
func (p *Provider) Invalidate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	source := p.source
	p.token = ""
	p.loaded = true

	if source == config.SourceEnv {
		p.rejected = true
		p.logger.Warn("session token from environment rejected", "env", config.TokenEnv)
		return nil
	}
	p.source = config.SourceNone
	if err := config.ClearToken(); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	p.logger.Info("session token cleared", "source", source)
	return nil
}

// Login authenticates with email and password and stores the new token.
func (p *Provider) Login(ctx context.Context, a Authenticator, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, errors.New("email and password are required")
	}

	resp, err := a.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	source, err := config.SaveToken(resp.Token)
	if err != nil {
		return Session{}, fmt.Errorf("store session token: %w", err)
	}

	p.mu.Lock()
	p.token = strings.TrimSpace(resp.Token)
	p.source = source
	p.loaded = true
	p.rejected = false
	p.mu.Unlock()

	p.logger.Info("logged in", "email", email, "stored_in", source)
	return p.Session()
}

// Logout removes the stored token.
func (p *Provider) Logout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	p.source = config.SourceNone
	p.loaded = false
	return config.ClearToken()
}

func (p *Provider) loadLocked() error {
	if p.loaded {
		return nil
	}
	token, source, err := config.GetToken()
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	p.token, p.source, p.loaded = token, source, true
	if token != "" {
		p.logger.Debug("session token loaded", "source", source)
	}
	return nil
}

// parseClaims decodes the token's claims without verifying the signature; the
// server does that. ok is false for tokens that are not JWTs.
func parseClaims(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
