// Package insights asks a language model for an analysis of a user's
// transactions and decodes the structured answer.
package insights

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoTransactions is returned when there is nothing to analyze
	ErrNoTransactions = errors.New("no transactions to analyze")
	// ErrRateLimited is returned when the user or the AI provider is throttled
	ErrRateLimited = errors.New("rate limits exceeded, please try again later")
	// ErrPaymentRequired is returned when the AI workspace is out of credits
	ErrPaymentRequired = errors.New("payment required, please add funds to your AI workspace")
	// ErrGateway is returned for any other AI provider failure
	ErrGateway = errors.New("AI gateway error")
	// ErrUnparseable is returned when the model's reply holds no valid insights JSON
	ErrUnparseable = errors.New("failed to parse AI insights")
)

// Generator produces a completion for a system and user prompt
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Insights is the analysis returned by the model. Field names follow the
// JSON contract the model is prompted with.
type Insights struct {
	Summary         string           `json:"summary"`
	Patterns        Patterns         `json:"patterns"`
	Recommendations []Recommendation `json:"recommendations"`
	FinanceScore    FinanceScore     `json:"financeScore"`
	Prediction      Prediction       `json:"prediction"`
}

// Patterns describes where and how the money goes
type Patterns struct {
	HighestCategory  string `json:"highestCategory"`
	MostExpensiveDay string `json:"mostExpensiveDay"`
	Trend            string `json:"trend"` // increasing|stable|decreasing
	TrendExplanation string `json:"trendExplanation"`
}

// Recommendation is a single savings tip
type Recommendation struct {
	Tip              string `json:"tip"`
	PotentialSavings Number `json:"potentialSavings"`
	Priority         string `json:"priority"` // high|medium|low
}

// FinanceScore rates the user's finances from 1 to 100
type FinanceScore struct {
	Score       Number       `json:"score"`
	Explanation string       `json:"explanation"`
	Factors     ScoreFactors `json:"factors"`
}

type ScoreFactors struct {
	IncomeExpenseRatio string `json:"incomeExpenseRatio"` // good|fair|poor
	Stability          string `json:"stability"`          // high|medium|low
	Trend              string `json:"trend"`              // improving|stable|declining
}

// Prediction estimates next month's expenses
type Prediction struct {
	EstimatedExpense Number `json:"estimatedExpense"`
	MarginOfError    Number `json:"marginOfError"`
	Explanation      string `json:"explanation"`
	Confidence       string `json:"confidence"` // high|medium|low
}

// Number is a figure in the model's answer. Models sometimes quote numbers
// ("85", "1500000"), so both forms are accepted. A quoted value that is not
// a number decodes as zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		if len(b) > 0 && b[0] == '"' {
			*n = 0
			return nil
		}
		return err
	}
	*n = Number(d.InexactFloat64())
	return nil
}
