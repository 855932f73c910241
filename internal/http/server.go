// Package http exposes the JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budget/internal/log"
	"budget/internal/services"
)

// Capability names guarding API operations.
const (
	capCreateTransaction   = "CREATE_TRANSACTION"
	capViewOwnTransactions = "VIEW_OWN_TRANSACTIONS"
	capViewAllTransactions = "VIEW_ALL_TRANSACTIONS"
	capDeleteTransactions  = "DELETE_TRANSACTIONS"
	capViewCategories      = "VIEW_CATEGORIES"
	capManageCategories    = "MANAGE_CATEGORIES"
	capManageUsers         = "MANAGE_USERS"
)

// Services bundles the application services the API fronts.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
}

type Server struct {
	http.Server
	services     Services
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svcs Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		services:    svcs,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Public endpoints
	mux.HandleFunc("POST /api/auth/authenticate", s.withMiddleware(s.handleAuthenticate))
	mux.HandleFunc("POST /api/users/register", s.withMiddleware(s.handleRegister))

	// Users
	mux.HandleFunc("GET /api/users", s.authenticated(s.requireCapability(s.handleListUsers, capManageUsers)))
	mux.HandleFunc("GET /api/users/me", s.authenticated(s.handleGetSelf))
	mux.HandleFunc("GET /api/users/{id}", s.authenticated(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}", s.authenticated(s.handleUpdateUser))
	mux.HandleFunc("POST /api/users/{id}/deactivate", s.authenticated(s.requireCapability(s.handleDeactivateUser, capManageUsers)))
	mux.HandleFunc("POST /api/users/{id}/reactivate", s.authenticated(s.requireCapability(s.handleReactivateUser, capManageUsers)))

	// Categories
	mux.HandleFunc("GET /api/categories", s.authenticated(s.requireCapability(s.handleListCategories, capViewCategories, capManageCategories)))
	mux.HandleFunc("GET /api/categories/search", s.authenticated(s.requireCapability(s.handleSearchCategories, capViewCategories, capManageCategories)))
	mux.HandleFunc("GET /api/categories/name/{name}", s.authenticated(s.requireCapability(s.handleGetCategoryByName, capViewCategories, capManageCategories)))
	mux.HandleFunc("GET /api/categories/{id}", s.authenticated(s.requireCapability(s.handleGetCategory, capViewCategories, capManageCategories)))
	mux.HandleFunc("POST /api/categories", s.authenticated(s.requireCapability(s.handleCreateCategory, capManageCategories)))
	mux.HandleFunc("PUT /api/categories/{id}", s.authenticated(s.requireCapability(s.handleUpdateCategory, capManageCategories)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.authenticated(s.requireCapability(s.handleDeleteCategory, capManageCategories)))

	// Transactions
	mux.HandleFunc("POST /api/transactions", s.authenticated(s.requireCapability(s.handleCreateTransaction, capCreateTransaction)))
	mux.HandleFunc("GET /api/transactions", s.authenticated(s.requireCapability(s.handleListTransactions, capViewOwnTransactions, capViewAllTransactions)))
	mux.HandleFunc("GET /api/transactions/summary", s.authenticated(s.requireCapability(s.handleSummary, capViewOwnTransactions, capViewAllTransactions)))
	mux.HandleFunc("GET /api/transactions/{id}", s.authenticated(s.requireCapability(s.handleGetTransaction, capViewOwnTransactions, capViewAllTransactions)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.authenticated(s.requireCapability(s.handleUpdateTransaction, capCreateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authenticated(s.handleDeleteTransaction))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging
// to responses
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		fields := log.NewFields().
			WithComponent(log.ComponentHTTP).
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery,
				r.Header.Get("User-Agent"), r.Header.Get("Referer"))
		slog.InfoContext(ctx, "Request started", fields.ToSlice()...)

		// Rate limit mutating requests
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		fields = fields.WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400)
		slog.InfoContext(ctx, "Request completed", fields.ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
