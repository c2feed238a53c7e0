package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/config"
	"sellout-dashboard/internal/entry"
	"sellout-dashboard/internal/handlers"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/upstream"
)

const cookieName = "sellout_session"

// stubUpstream answers every remote call from memory.
type stubUpstream struct{}

func (stubUpstream) Login(ctx context.Context, username, password string) (*upstream.LoginResult, error) {
	if password != "secret" {
		return nil, &upstream.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return &upstream.LoginResult{Token: "token", User: models.User{Username: username}}, nil
}

func (stubUpstream) Verify(ctx context.Context, token string) error { return nil }

func (stubUpstream) Training(ctx context.Context, token string, page, perPage int) ([]models.Training, error) {
	return []models.Training{{ID: 1, Region: "Jawa"}}, nil
}

func (stubUpstream) Coloris(ctx context.Context, token string, page, perPage int) ([]models.Coloris, error) {
	return []models.Coloris{{ID: 1, Region: "Bali"}}, nil
}

func (stubUpstream) Sellout(ctx context.Context, token string, page, perPage int) ([]models.Sellout, error) {
	return []models.Sellout{
		{ID: 1, Year: 2024, Month: 2, ColoristName: "Ani", TotalSellout: models.Float(100)},
		{ID: 2, Year: 2024, Month: 1, ColoristName: "Budi", TotalSellout: models.Float(50)},
	}, nil
}

func (stubUpstream) Create(ctx context.Context, token string, kind models.DatasetKind, payload any) error {
	return nil
}

func (stubUpstream) Import(ctx context.Context, token string, kind models.DatasetKind, filename string, file io.Reader) (int, error) {
	return 1, nil
}

func (stubUpstream) Export(ctx context.Context, token string, kind models.DatasetKind) (*upstream.Download, error) {
	return &upstream.Download{Body: io.NopCloser(strings.NewReader("xlsx")), ContentType: "application/octet-stream"}, nil
}

func newTestServer(t *testing.T) (*Server, *auth.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	up := stubUpstream{}

	store := auth.NewStore(time.Hour)
	authenticator := auth.NewAuthenticator(up, store, logger)
	dashboard := services.NewDashboard(up, services.PageSizes{Training: 50, Coloris: 50, Sellout: 200}, logger)
	entries := entry.NewService(up, entry.NewBuilder(time.UTC), logger)

	h := Handlers{
		Pages:  handlers.NewPageHandlers(authenticator, config.SessionConfig{CookieName: cookieName, TTL: time.Hour}, logger),
		SSE:    handlers.NewSSEHandlers(dashboard, entries, authenticator, logger),
		Files:  handlers.NewFileHandlers(entries, logger),
		Charts: handlers.NewChartHandlers(charts.NewRenderer(charts.WithCache(charts.NewCache(time.Minute))), logger),
		API:    handlers.NewAPIHandlers(dashboard, nil, logger),
	}
	metrics := promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	return NewServer(h, authenticator, cookieName, metrics, logger), store
}

func TestServer_OpenRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/health", http.StatusOK, "application/json"},
		{"/login", http.StatusOK, "text/html"},
		{"/static/app.css", http.StatusOK, "text/css"},
		{"/metrics", http.StatusOK, ""},
		{"/nonexistent", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.contentType != "" && !strings.Contains(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content-type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_RequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{http.MethodGet, "/", http.StatusSeeOther},
		{http.MethodGet, "/charts/daily", http.StatusSeeOther},
		{http.MethodGet, "/export/training", http.StatusSeeOther},
		{http.MethodPost, "/import/training", http.StatusSeeOther},
		{http.MethodGet, "/api/sellout", http.StatusUnauthorized},
		{http.MethodGet, "/api/charts", http.StatusUnauthorized},
		{http.MethodGet, "/sse/dashboard", http.StatusUnauthorized},
		{http.MethodPost, "/sse/manual/training", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: "unknown"})
			w := httptest.NewRecorder()

			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusSeeOther && w.Header().Get("Location") != "/login" {
				t.Errorf("expected redirect to /login, got %q", w.Header().Get("Location"))
			}
		})
	}
}

func TestServer_AuthenticatedRoutes(t *testing.T) {
	srv, store := newTestServer(t)
	sess := store.Create("token", models.User{Username: "admin"})

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/sellout", http.StatusOK, "application/json"},
		{"/api/charts", http.StatusOK, "application/json"},
		{"/api/orders", http.StatusNotFound, "application/json"},
		{"/sse/dashboard", http.StatusOK, "text/event-stream"},
		{"/sse/toggle/training", http.StatusOK, "text/event-stream"},
		{"/sse/modal/import?kind=sellout", http.StatusOK, "text/event-stream"},
		{"/charts/top10", http.StatusOK, "text/html"},
		{"/export/sellout", http.StatusOK, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})
			w := httptest.NewRecorder()

			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content-type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_LoginFlow(t *testing.T) {
	srv, store := newTestServer(t)

	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected dashboard status %d, got %d", http.StatusOK, w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Errorf("expected logout status %d, got %d", http.StatusSeeOther, w.Code)
	}
	if store.Len() != 0 {
		t.Errorf("expected session to be removed, got %d", store.Len())
	}
}

func TestServer_LoginRejected(t *testing.T) {
	srv, store := newTestServer(t)

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Error("login page should show the upstream message")
	}
	if store.Len() != 0 {
		t.Errorf("expected no session, got %d", store.Len())
	}
}
