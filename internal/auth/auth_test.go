package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/upstream"
)

type fakeUpstream struct {
	token     string
	loginErr  error
	verifyErr error
	logins    int
}

func (f *fakeUpstream) Login(_ context.Context, username, _ string) (*upstream.LoginResult, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &upstream.LoginResult{Token: f.token, User: models.User{Username: username}}, nil
}

func (f *fakeUpstream) Verify(context.Context, string) error {
	return f.verifyErr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "admin",
	}).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return tok
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create("opaque-token", models.User{Username: "admin"})

	assert.NotEmpty(t, sess.ID)
	assert.NotNil(t, sess.View)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = store.Get("")
	assert.False(t, ok)
	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestStore_TokenExpiryCapsSession(t *testing.T) {
	store := NewStore(12 * time.Hour)
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	sess := store.Create(signedToken(t, exp), models.User{})

	assert.True(t, sess.ExpiresAt.Equal(exp), "ExpiresAt = %v, want %v", sess.ExpiresAt, exp)
}

func TestStore_ExpiredSessionsAreEvicted(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	a := store.Create("a", models.User{})
	store.Create("b", models.User{})
	require.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	_, ok := store.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestStore_Run(t *testing.T) {
	store := NewStore(time.Millisecond)
	store.Create("a", models.User{})

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	go store.Run(ctx, 5*time.Millisecond, func(n int) {
		select {
		case swept <- n:
		default:
		}
	})
	defer cancel()

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = tokenExpiry("not-a-jwt")
	assert.False(t, ok)
}

func TestAuthenticator_Login(t *testing.T) {
	up := &fakeUpstream{token: "tok"}
	a := NewAuthenticator(up, NewStore(time.Hour), quietLogger())

	sess, err := a.Login(context.Background(), "  admin ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "admin", sess.User.Username)

	got, ok := a.Session(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestAuthenticator_LoginValidation(t *testing.T) {
	up := &fakeUpstream{token: "tok"}
	a := NewAuthenticator(up, NewStore(time.Hour), quietLogger())

	for _, creds := range [][2]string{{"", "x"}, {"admin", ""}, {"   ", "x"}} {
		_, err := a.Login(context.Background(), creds[0], creds[1])
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}
	assert.Zero(t, up.logins, "upstream should not be called")
}

func TestAuthenticator_LoginUpstreamError(t *testing.T) {
	up := &fakeUpstream{loginErr: &upstream.APIError{Status: 401, Message: "invalid credentials"}}
	a := NewAuthenticator(up, NewStore(time.Hour), quietLogger())

	_, err := a.Login(context.Background(), "admin", "wrong")
	var apiErr *upstream.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestAuthenticator_Verify(t *testing.T) {
	tests := []struct {
		name        string
		verifyErr   error
		wantErr     error
		wantSession bool
	}{
		{name: "valid", wantSession: true},
		{
			name:      "rejected token ends session",
			verifyErr: fmt.Errorf("verify: %w", upstream.ErrUnauthorized),
			wantErr:   ErrNoSession,
		},
		{
			name:        "transient failure keeps session",
			verifyErr:   errors.New("connection refused"),
			wantSession: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUpstream{token: "tok", verifyErr: tt.verifyErr}
			a := NewAuthenticator(up, NewStore(time.Hour), quietLogger())
			sess, err := a.Login(context.Background(), "admin", "secret")
			require.NoError(t, err)

			_, err = a.Verify(context.Background(), sess.ID)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.verifyErr != nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}

			_, ok := a.Session(sess.ID)
			assert.Equal(t, tt.wantSession, ok)
		})
	}
}

func TestAuthenticator_VerifyUnknownSession(t *testing.T) {
	a := NewAuthenticator(&fakeUpstream{}, NewStore(time.Hour), quietLogger())
	_, err := a.Verify(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthenticator_Logout(t *testing.T) {
	store := NewStore(time.Hour)
	a := NewAuthenticator(&fakeUpstream{token: "tok"}, store, quietLogger())
	sess, err := a.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)

	a.Logout(context.Background(), sess.ID)
	a.Logout(context.Background(), sess.ID)

	assert.Equal(t, 0, store.Len())
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	sess := &Session{ID: "abc"}
	got, ok := SessionFrom(WithSession(context.Background(), sess))
	require.True(t, ok)
	assert.Same(t, sess, got)
}
