package server

import (
	"log/slog"
	"net/http"

	"sellout-dashboard/internal/handlers"
	"sellout-dashboard/internal/middleware"
	"sellout-dashboard/internal/ui/static"
)

// Handlers groups every handler set the router dispatches to.
type Handlers struct {
	Pages  *handlers.PageHandlers
	SSE    *handlers.SSEHandlers
	Files  *handlers.FileHandlers
	Charts *handlers.ChartHandlers
	API    *handlers.APIHandlers
}

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	handlers Handlers
}

// NewServer registers the routes. Everything except login, health,
// metrics and static assets requires a session cookie.
func NewServer(h Handlers, sessions middleware.SessionLookup, cookieName string, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		handlers: h,
	}
	s.setupRoutes(middleware.RequireSession(sessions, cookieName, logger), metrics)
	return s
}

func (s *Server) setupRoutes(requireSession middleware.Middleware, metrics http.Handler) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return requireSession(fn)
	}

	// Open routes
	s.mux.HandleFunc("GET /login", s.handlers.Pages.HandleLoginPage)
	s.mux.HandleFunc("POST /login", s.handlers.Pages.HandleLogin)
	s.mux.HandleFunc("POST /logout", s.handlers.Pages.HandleLogout)
	s.mux.HandleFunc("GET /health", s.handlers.API.HandleHealth)
	if metrics != nil {
		s.mux.Handle("GET /metrics", metrics)
	}
	s.mux.Handle("GET "+static.DefaultPath, static.Handler(static.DefaultPath))

	// Dashboard page
	s.mux.Handle("GET /{$}", protect(s.handlers.Pages.HandleDashboard))

	// Datastar SSE endpoints
	s.mux.Handle("GET /sse/dashboard", protect(s.handlers.SSE.HandleDashboard))
	s.mux.Handle("GET /sse/toggle/{kind}", protect(s.handlers.SSE.HandleToggle))
	s.mux.Handle("GET /sse/modal/{action}", protect(s.handlers.SSE.HandleModal))
	s.mux.Handle("POST /sse/manual/{kind}", protect(s.handlers.SSE.HandleManual))

	// Spreadsheet transfer
	s.mux.Handle("POST /import/{kind}", protect(s.handlers.Files.HandleImport))
	s.mux.Handle("GET /export/{kind}", protect(s.handlers.Files.HandleExport))

	// Chart pages and JSON API
	s.mux.Handle("GET /charts/{name}", protect(s.handlers.Charts.HandleChart))
	s.mux.Handle("GET /api/charts", protect(s.handlers.API.HandleCharts))
	s.mux.Handle("GET /api/{kind}", protect(s.handlers.API.HandleDataset))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
