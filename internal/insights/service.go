package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zombor/balance-siaga/internal/ledger"
)

const (
	// DefaultRate allows one analysis every 20 seconds per user
	DefaultRate  = rate.Limit(1.0 / 20)
	DefaultBurst = 3

	limiterIdleTimeout = 30 * time.Minute
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Service generates insights for a user's transactions
type Service struct {
	generator Generator
	limit     rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*userLimiter
	now      func() time.Time
}

// NewService creates a new Service with the default per-user throttle
func NewService(generator Generator) *Service {
	return NewServiceWithLimit(generator, DefaultRate, DefaultBurst)
}

// NewServiceWithLimit creates a new Service with a custom per-user throttle
func NewServiceWithLimit(generator Generator, limit rate.Limit, burst int) *Service {
	return &Service{
		generator: generator,
		limit:     limit,
		burst:     burst,
		limiters:  make(map[string]*userLimiter),
		now:       time.Now,
	}
}

// allow reports whether the user may run another analysis, dropping
// limiters that have been idle for a while.
func (s *Service) allow(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, l := range s.limiters {
		if now.Sub(l.lastSeen) > limiterIdleTimeout {
			delete(s.limiters, id)
		}
	}

	l, ok := s.limiters[userID]
	if !ok {
		l = &userLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[userID] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// Generate analyzes the user's transactions
func (s *Service) Generate(ctx context.Context, userID string, transactions []*ledger.Transaction) (*Insights, error) {
	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}
	if !s.allow(userID) {
		return nil, ErrRateLimited
	}

	slog.Info("Analyzing transactions", "user_id", userID, "count", len(transactions))

	prompt, err := buildPrompt(transactions)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrPaymentRequired) {
			slog.Error("Error generating insights", "user_id", userID, "error", err)
		}
		return nil, fmt.Errorf("generating insights: %w", err)
	}

	insights, err := parseInsights(reply)
	if err != nil {
		slog.Error("Failed to parse AI response", "user_id", userID, "error", err)
		return nil, err
	}
	return insights, nil
}
