package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/config"
	"sellout-dashboard/internal/upstream"
)

type fakeAuth struct {
	session   *auth.Session
	loginErr  error
	verifyErr error
	loggedOut string
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session, nil
}

func (f *fakeAuth) Logout(ctx context.Context, id string) { f.loggedOut = id }

func (f *fakeAuth) Session(id string) (*auth.Session, bool) {
	if f.session == nil || f.session.ID != id {
		return nil, false
	}
	return f.session, true
}

func (f *fakeAuth) Verify(ctx context.Context, id string) (*auth.Session, error) {
	return f.session, f.verifyErr
}

var testSessionConfig = config.SessionConfig{CookieName: "sellout_session", TTL: time.Hour}

func loginRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageHandlers_HandleLoginPage(t *testing.T) {
	sess := newSession()
	handlers := NewPageHandlers(&fakeAuth{session: sess}, testSessionConfig, quietLogger())

	t.Run("renders form", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.HandleLoginPage(w, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), `id="btnLogin"`)
	})

	t.Run("redirects when logged in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: testSessionConfig.CookieName, Value: sess.ID})
		w := httptest.NewRecorder()

		handlers.HandleLoginPage(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestPageHandlers_HandleLogin(t *testing.T) {
	sess := newSession()
	handlers := NewPageHandlers(&fakeAuth{session: sess}, testSessionConfig, quietLogger())

	w := httptest.NewRecorder()
	handlers.HandleLogin(w, loginRequest("admin", "secret"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testSessionConfig.CookieName, cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestPageHandlers_HandleLoginFailure(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{"missing credentials", auth.ErrMissingCredentials, http.StatusBadRequest, "username dan password wajib diisi"},
		{"rejected", fmt.Errorf("login: %w", &upstream.APIError{Status: 401, Message: "Invalid credentials"}), http.StatusUnauthorized, "Invalid credentials"},
		{"unauthorized", upstream.ErrUnauthorized, http.StatusUnauthorized, "Login failed"},
		{"unreachable", stderrors.New("dial tcp: connection refused"), http.StatusBadGateway, "Tidak dapat terhubung ke server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewPageHandlers(&fakeAuth{loginErr: tt.err}, testSessionConfig, quietLogger())

			w := httptest.NewRecorder()
			handlers.HandleLogin(w, loginRequest("admin", "secret"))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedMsg)
			assert.Contains(t, w.Body.String(), `value="admin"`)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestPageHandlers_HandleLogout(t *testing.T) {
	fa := &fakeAuth{}
	handlers := NewPageHandlers(fa, testSessionConfig, quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: testSessionConfig.CookieName, Value: "abc"})
	w := httptest.NewRecorder()

	handlers.HandleLogout(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, "abc", fa.loggedOut)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestPageHandlers_HandleDashboard(t *testing.T) {
	t.Run("renders page", func(t *testing.T) {
		sess := newSession()
		handlers := NewPageHandlers(&fakeAuth{session: sess}, testSessionConfig, quietLogger())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handlers.HandleDashboard(w, withSession(req, sess))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `id="dashboardView"`)
		assert.Contains(t, body, "admin")
		assert.Contains(t, body, "Memuat data...")
	})

	t.Run("keeps session when verify is unavailable", func(t *testing.T) {
		sess := newSession()
		handlers := NewPageHandlers(&fakeAuth{session: sess, verifyErr: stderrors.New("timeout")}, testSessionConfig, quietLogger())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handlers.HandleDashboard(w, withSession(req, sess))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("redirects on invalid token", func(t *testing.T) {
		sess := newSession()
		handlers := NewPageHandlers(&fakeAuth{session: sess, verifyErr: fmt.Errorf("%w: %w", auth.ErrNoSession, upstream.ErrUnauthorized)}, testSessionConfig, quietLogger())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handlers.HandleDashboard(w, withSession(req, sess))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Less(t, cookies[0].MaxAge, 0)
	})

	t.Run("redirects without session", func(t *testing.T) {
		handlers := NewPageHandlers(&fakeAuth{}, testSessionConfig, quietLogger())

		w := httptest.NewRecorder()
		handlers.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
	})
}
