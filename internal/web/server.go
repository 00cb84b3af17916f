// Package web provides the HTTP server and handlers for the uploader,
// gallery, auth and leave APIs.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/config"
	"github.com/JonMunkholm/leavetrack/internal/core"
	mw "github.com/JonMunkholm/leavetrack/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(requestMeta)

	if s.cfg.Rate.Enabled {
		s.router.Use(mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Middleware)
	}

	s.router.Use(mw.Sessions(s.service.Sessions(), mw.SessionOptions{
		CookieName: s.cfg.Session.CookieName,
		Secure:     s.cfg.Session.CookieSecure,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// The event stream stays open for the life of the upload, so it sits
	// outside the request timeout.
	s.router.Get("/api/uploaders/{id}/events", s.handleUploaderEvents)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout()))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/gallery", http.StatusFound)
		})
		r.Get("/gallery", s.handleGalleryPage)

		r.Route("/api", func(r chi.Router) {
			// Uploaders
			r.Post("/uploaders", s.handleCreateUploader)
			r.Get("/uploaders/status", s.handleUploadsStatus)
			r.Get("/uploaders/{id}", s.handleUploaderStatus)
			r.Delete("/uploaders/{id}", s.handleRemoveUploader)
			r.Post("/uploaders/{id}/reset", s.handleResetUploader)

			selectFile := http.Handler(http.HandlerFunc(s.handleSelectFile))
			if s.cfg.Rate.Enabled {
				selectFile = mw.NewRateLimiter(s.cfg.Rate.UploadLimit).Middleware(selectFile)
			}
			r.Method(http.MethodPost, "/uploaders/{id}/file", selectFile)

			// Gallery
			r.Get("/gallery", s.handleListGallery)
			r.Get("/gallery/{id}", s.handleSelectImage)
			r.With(mw.APIKeyAuth(&s.cfg.Security)).Delete("/gallery", s.handleClearGallery)

			// Auth
			r.Post("/auth/signup", s.handleSignup)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			// Leave
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAuth)
				r.Get("/leave/dashboard", s.handleLeaveDashboard)
				r.Get("/leave/requests", s.handleLeaveRequests)
				r.Post("/leave/requests", s.handleSubmitLeave)
			})

			r.Post("/contact", s.handleContact)
		})
	})
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.Server.RequestTimeout > 0 {
		return s.cfg.Server.RequestTimeout
	}
	return 60 * time.Second
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// securityHeaders adds security headers to all responses. Previews are data
// URIs, so the policy allows data: images.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
