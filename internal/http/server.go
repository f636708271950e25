// Package http is the server-rendered admin UI. Each feature screen
// follows the same shape: load the collection through its port (cached),
// filter locally, and on mutation either patch the cache (delete) or drop
// it so the next render reloads from the platform (create/update).
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/cache"
	"agrly-admin/internal/core"
	"agrly-admin/internal/platform"
	appweb "agrly-admin/web"
)

const cacheKeyAll = "all"

// AuditPublisher is the slice of the audit client the server needs; nil
// disables audit publishing.
type AuditPublisher interface {
	PublishEvent(ctx context.Context, event *audit.Event) error
}

type Server struct {
	http.Server
	templates *template.Template
	backend   platform.Backend
	auditc    AuditPublisher

	rateLimiter *rateLimiter

	usersCache        *cache.Cache[[]core.User]
	apartmentsCache   *cache.Cache[[]core.Apartment]
	categoriesCache   *cache.Cache[[]core.Category]
	transactionsCache *cache.Cache[[]core.Transaction]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, be platform.Backend, auditc AuditPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:           be,
		auditc:            auditc,
		rateLimiter:       newRateLimiter(),
		usersCache:        cache.New[[]core.User](4, 5*time.Minute),
		apartmentsCache:   cache.New[[]core.Apartment](4, 5*time.Minute),
		categoriesCache:   cache.New[[]core.Category](4, 5*time.Minute),
		transactionsCache: cache.New[[]core.Transaction](4, 5*time.Minute),
		stopCacheCleanup:  make(chan struct{}),
	}

	go s.startCacheCleanup()

	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.wrap(s.handleLogin))
	mux.HandleFunc("/logout", s.wrap(s.handleLogout))

	mux.HandleFunc("/", s.wrap(s.requireAuth(s.handleDashboard)))

	mux.HandleFunc("/users", s.wrap(s.requireAuth(s.handleUsers)))
	mux.HandleFunc("/users/create", s.wrap(s.requireAuth(s.handleUserCreate)))
	mux.HandleFunc("/users/update", s.wrap(s.requireAuth(s.handleUserUpdate)))
	mux.HandleFunc("/users/delete", s.wrap(s.requireAuth(s.handleUserDelete)))

	mux.HandleFunc("/apartments", s.wrap(s.requireAuth(s.handleApartments)))
	mux.HandleFunc("/apartments/create", s.wrap(s.requireAuth(s.handleApartmentCreate)))
	mux.HandleFunc("/apartments/update", s.wrap(s.requireAuth(s.handleApartmentUpdate)))
	mux.HandleFunc("/apartments/delete", s.wrap(s.requireAuth(s.handleApartmentDelete)))
	mux.HandleFunc("/apartments/search", s.wrap(s.requireAuth(s.handleApartmentSearch)))
	mux.HandleFunc("/apartments/photo", s.wrap(s.requireAuth(s.handleApartmentPhoto)))

	mux.HandleFunc("/categories", s.wrap(s.requireAuth(s.handleCategories)))
	mux.HandleFunc("/categories/create", s.wrap(s.requireAuth(s.handleCategoryCreate)))
	mux.HandleFunc("/categories/update", s.wrap(s.requireAuth(s.handleCategoryUpdate)))
	mux.HandleFunc("/categories/delete", s.wrap(s.requireAuth(s.handleCategoryDelete)))

	mux.HandleFunc("/transactions", s.wrap(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/transactions/create", s.wrap(s.requireAuth(s.handleTransactionCreate)))

	return s
}

// wrap adds security headers, rate limiting on mutations, a request id and
// request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// requireAuth redirects to the login screen when no session token is held.
// Token validity is not checked here; an expired token surfaces as a failed
// platform call on the target screen.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.backend.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.usersCache.CleanExpired() +
				s.apartmentsCache.CleanExpired() +
				s.categoriesCache.CleanExpired() +
				s.transactionsCache.CleanExpired()
			if removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// publishAudit records a successful mutation on the audit stream. Publish
// failures are logged, never surfaced to the admin.
func (s *Server) publishAudit(ctx context.Context, entity, op string, id int64) {
	if s.auditc == nil {
		return
	}
	event := audit.NewEvent(entity, op, strconv.FormatInt(id, 10))
	if err := s.auditc.PublishEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish audit event",
			"error", err, "entity", entity, "op", op, "entity_id", id)
	}
}
