// Package web serves the JSON API and the landing page.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"

	"github.com/zombor/balance-siaga/internal/account"
	"github.com/zombor/balance-siaga/internal/insights"
	"github.com/zombor/balance-siaga/internal/ledger"
	"github.com/zombor/balance-siaga/internal/receipt"
)

// Server handles HTTP requests
type Server struct {
	accounts *account.Service
	ledger   *ledger.Service
	receipts *receipt.Service
	insights *insights.Service // nil when insights are disabled
	mux      *http.ServeMux
}

const shutdownTimeout = 10 * time.Second

// NewServer creates a new Server with default mux
func NewServer(accounts *account.Service, l *ledger.Service, receipts *receipt.Service, in *insights.Service) *Server {
	return NewServerWithMux(accounts, l, receipts, in, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(accounts *account.Service, l *ledger.Service, receipts *receipt.Service, in *insights.Service, mux *http.ServeMux) *Server {
	s := &Server{
		accounts: accounts,
		ledger:   l,
		receipts: receipts,
		insights: in,
		mux:      mux,
	}
	s.registerRoutes()
	return s
}

type userKey struct{}

// currentUser returns the user attached by requireSession
func currentUser(r *http.Request) *account.User {
	user, _ := r.Context().Value(userKey{}).(*account.User)
	return user
}

// bearerToken extracts the session token from the Authorization header
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// requireSession middleware
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.accounts.Authenticate(bearerToken(r))
		if err != nil {
			if !errors.Is(err, account.ErrUnauthorized) {
				slog.Error("Error authenticating request", "error", err)
				writeError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="BalanceSiaga"`)
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// logRequests writes one access log line per request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		level := slog.LevelInfo
		switch {
		case m.Code >= 500:
			level = slog.LevelError
		case m.Code >= 400:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration,
			"bytes", m.Written,
		)
	})
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.requireSession(s.handleLogout))
	s.mux.HandleFunc("GET /api/me", s.requireSession(s.handleMe))

	s.mux.HandleFunc("GET /api/transactions/{id}/receipt", s.requireSession(s.handleGetReceiptFile))
	s.mux.HandleFunc("GET /api/transactions/{id}", s.requireSession(s.handleGetTransaction))
	s.mux.HandleFunc("DELETE /api/transactions/{id}", s.requireSession(s.handleDeleteTransaction))
	s.mux.HandleFunc("GET /api/transactions", s.requireSession(s.handleListTransactions))
	s.mux.HandleFunc("POST /api/transactions", s.requireSession(s.handleCreateTransaction))
	s.mux.HandleFunc("GET /api/categories", s.requireSession(s.handleCategories))

	s.mux.HandleFunc("GET /api/stats/expenses", s.requireSession(s.handleExpenseBreakdown))
	s.mux.HandleFunc("GET /api/stats", s.requireSession(s.handleStats))
	s.mux.HandleFunc("GET /api/export", s.requireSession(s.handleExport))

	s.mux.HandleFunc("POST /api/receipts/scan", s.requireSession(s.handleScanReceipt))
	s.mux.HandleFunc("POST /api/receipts", s.requireSession(s.handleSaveReceipt))

	s.mux.HandleFunc("POST /api/insights", s.requireSession(s.handleInsights))

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /index.html", s.handleIndex)
}

// Handler returns the full middleware chain
func (s *Server) Handler() http.Handler {
	return logRequests(corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
