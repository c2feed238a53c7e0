package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/upstream"
)

var (
	ErrMissingCredentials = errors.New("username dan password wajib diisi")
	ErrNoSession          = errors.New("no active session")
)

// Upstream is the part of the API client that authentication needs.
type Upstream interface {
	Login(ctx context.Context, username, password string) (*upstream.LoginResult, error)
	Verify(ctx context.Context, token string) error
}

type Authenticator struct {
	upstream Upstream
	store    *Store
	logger   *slog.Logger
}

func NewAuthenticator(up Upstream, store *Store, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{upstream: up, store: store, logger: logger}
}

// Login exchanges credentials for an upstream token and opens a session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	res, err := a.upstream.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess := a.store.Create(res.Token, res.User)
	observability.LoggerFrom(ctx, a.logger).Info("user logged in",
		"user", res.User.Username,
		"session", observability.ShortID(sess.ID),
		"expires_at", sess.ExpiresAt,
	)
	return sess, nil
}

// Session looks up a live session without contacting the upstream.
func (a *Authenticator) Session(id string) (*Session, bool) {
	return a.store.Get(id)
}

// Verify checks the session token against the upstream. A rejected token
// ends the session. Other failures leave it in place so a flaky upstream
// does not log everyone out.
func (a *Authenticator) Verify(ctx context.Context, id string) (*Session, error) {
	sess, ok := a.store.Get(id)
	if !ok {
		return nil, ErrNoSession
	}
	if err := a.upstream.Verify(ctx, sess.Token); err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			a.store.Delete(id)
			observability.LoggerFrom(ctx, a.logger).Info("session token rejected",
				"session", observability.ShortID(id))
			return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}
	return sess, nil
}

func (a *Authenticator) Logout(ctx context.Context, id string) {
	if _, ok := a.store.Get(id); !ok {
		return
	}
	a.store.Delete(id)
	observability.LoggerFrom(ctx, a.logger).Info("user logged out", "session", observability.ShortID(id))
}

type ctxKey struct{}

func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func SessionFrom(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok && sess != nil
}
