package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IDGenerator generates unique IDs for transactions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

var hundred = decimal.NewFromInt(100)

// Service handles transaction operations
type Service struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB) *Service {
	return NewServiceWithDeps(db, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Add validates and records a new transaction for the user
func (s *Service) Add(userID string, in NewTransaction) (*Transaction, error) {
	now := s.timeSource.Now()

	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidTransaction)
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidTransaction)
	}

	t := &Transaction{
		ID:          s.idGenerator.Generate(),
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		ReceiptFile: in.ReceiptFile,
		CreatedAt:   now,
	}

	if err := s.db.SaveTransaction(t); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	return t, nil
}

// Get retrieves one of the user's transactions
func (s *Service) Get(userID, id string) (*Transaction, error) {
	t, err := s.db.GetTransaction(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// Delete removes one of the user's transactions and returns what was removed
func (s *Service) Delete(userID, id string) (*Transaction, error) {
	t, err := s.db.GetTransaction(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction for deletion: %w", err)
	}
	if err := s.db.DeleteTransaction(userID, id); err != nil {
		return nil, fmt.Errorf("deleting transaction: %w", err)
	}
	return t, nil
}

// All returns the user's transactions in the order they were recorded
func (s *Service) All(userID string) ([]*Transaction, error) {
	transactions, err := s.db.ListTransactions(userID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
	})
	return transactions, nil
}

// List returns the user's transactions matching f, newest date first
func (s *Service) List(userID string, f Filter) ([]*Transaction, error) {
	all, err := s.All(userID)
	if err != nil {
		return nil, err
	}

	matched := make([]*Transaction, 0, len(all))
	for _, t := range all {
		if f.matches(t) {
			matched = append(matched, t)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// ByType returns the user's transactions of one type
func (s *Service) ByType(userID string, t Type) ([]*Transaction, error) {
	return s.List(userID, Filter{Type: t})
}

// ByCategory returns the user's transactions in one category
func (s *Service) ByCategory(userID, category string) ([]*Transaction, error) {
	return s.List(userID, Filter{Category: category})
}

// TotalByType sums the amounts of the user's transactions of one type
func (s *Service) TotalByType(userID string, t Type) (decimal.Decimal, error) {
	all, err := s.All(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return totalOf(all, t), nil
}

// Summary computes income, expense and balance. Transfers do not move the balance.
func (s *Service) Summary(userID string) (*Summary, error) {
	all, err := s.All(userID)
	if err != nil {
		return nil, err
	}

	income := totalOf(all, Income)
	expense := totalOf(all, Expense)
	return &Summary{
		TotalIncome:      income,
		TotalExpense:     expense,
		Balance:          income.Sub(expense),
		TransactionCount: len(all),
	}, nil
}

// ExpenseBreakdown totals expenses per category in first-seen order
func (s *Service) ExpenseBreakdown(userID string) ([]CategoryTotal, error) {
	all, err := s.All(userID)
	if err != nil {
		return nil, err
	}

	breakdown := make([]CategoryTotal, 0)
	index := make(map[string]int)
	total := decimal.Zero
	for _, t := range all {
		if t.Type != Expense {
			continue
		}
		total = total.Add(t.Amount)
		if i, ok := index[t.Category]; ok {
			breakdown[i].Value = breakdown[i].Value.Add(t.Amount)
			continue
		}
		index[t.Category] = len(breakdown)
		breakdown = append(breakdown, CategoryTotal{Name: t.Category, Value: t.Amount})
	}

	if total.IsPositive() {
		for i := range breakdown {
			breakdown[i].Percent = breakdown[i].Value.Mul(hundred).Div(total).Round(0).IntPart()
		}
	}
	return breakdown, nil
}

// Categories lists the distinct categories the user has used, in first-seen order
func (s *Service) Categories(userID string) ([]string, error) {
	all, err := s.All(userID)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0)
	seen := make(map[string]bool)
	for _, t := range all {
		if !seen[t.Category] {
			seen[t.Category] = true
			categories = append(categories, t.Category)
		}
	}
	return categories, nil
}

// Counts tallies the user's transactions per type
func (s *Service) Counts(userID string) (*Counts, error) {
	all, err := s.All(userID)
	if err != nil {
		return nil, err
	}

	counts := &Counts{Total: len(all)}
	for _, t := range all {
		switch t.Type {
		case Income:
			counts.Income++
		case Expense:
			counts.Expense++
		case Transfer:
			counts.Transfer++
		}
	}
	return counts, nil
}

func totalOf(transactions []*Transaction, t Type) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == t {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}
