package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/config"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/ui/templates"
	"sellout-dashboard/internal/upstream"
)

const renderTimeout = 10 * time.Second

// Authenticator is what the page handlers need from the auth package.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	Logout(ctx context.Context, id string)
	Session(id string) (*auth.Session, bool)
	Verify(ctx context.Context, id string) (*auth.Session, error)
}

type PageHandlers struct {
	auth    Authenticator
	session config.SessionConfig
	logger  *slog.Logger
}

func NewPageHandlers(a Authenticator, session config.SessionConfig, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		auth:    a,
		session: session,
		logger:  logger,
	}
}

func (h *PageHandlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.session.CookieName); err == nil {
		if _, ok := h.auth.Session(c.Value); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	h.renderLogin(w, r, http.StatusOK, templates.LoginPage{})
}

func (h *PageHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, templates.LoginPage{Error: "Form tidak valid"})
		return
	}
	username := r.PostForm.Get("username")

	sess, err := h.auth.Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		status, msg := loginFailure(err)
		observability.LoggerFrom(r.Context(), h.logger).Warn("login failed", "user", username, "error", err)
		h.renderLogin(w, r, status, templates.LoginPage{Username: username, Error: msg})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func loginFailure(err error) (int, string) {
	var apiErr *upstream.APIError
	switch {
	case stderrors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest, err.Error()
	case stderrors.As(err, &apiErr):
		return http.StatusUnauthorized, apiErr.Error()
	case stderrors.Is(err, upstream.ErrUnauthorized):
		return http.StatusUnauthorized, "Login failed"
	default:
		return http.StatusBadGateway, "Tidak dapat terhubung ke server"
	}
}

func (h *PageHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.session.CookieName); err == nil {
		h.auth.Logout(r.Context(), c.Value)
	}
	h.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleDashboard re-verifies the token with the upstream before serving
// the page, the way a fresh page load always did.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if _, err := h.auth.Verify(r.Context(), sess.ID); err != nil {
		if stderrors.Is(err, auth.ErrNoSession) {
			h.clearCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		observability.LoggerFrom(r.Context(), h.logger).Warn("token verification unavailable", "error", err)
	}

	snap := sess.View.Snapshot()
	page := templates.DashboardPage{
		User:   sess.User.DisplayName(),
		Kinds:  templates.Kinds(),
		Notice: templates.NoticeFrom(sess.View.TakeNotice()),
		Tables: snap.Tables(),
		Charts: templates.NewChartsPanel(snap.Charts, snap.Revision),
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := templates.Dashboard(page).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard", "error", err)
	}
}

func (h *PageHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, page templates.LoginPage) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := templates.Login(page).Render(ctx, w); err != nil {
		h.logger.Error("render login", "error", err)
	}
}

func (h *PageHandlers) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
