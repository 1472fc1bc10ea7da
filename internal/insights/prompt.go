package insights

import (
	"encoding/json"
	"fmt"

	"github.com/zombor/balance-siaga/internal/ledger"
)

const systemPrompt = "You are a financial advisor AI that provides insights in Indonesian language. Always respond with valid JSON only, no additional text."

const analysisPrompt = `Analyze the following financial transactions and provide insights in Indonesian language:

%s

Please provide a comprehensive financial analysis including:

1. **Monthly Summary**: Brief overview of spending patterns this month
2. **Pattern Detection**: Identify the highest spending category, most expensive day, and spending trends (increasing/decreasing)
3. **Savings Recommendations**: Provide 3 actionable tips based on the transaction data with potential savings amounts
4. **Finance Score**: Calculate a score from 1-100 based on income/expense ratio, spending stability, and trends. Consider:
   - Income vs Expense ratio (higher income relative to expenses = better score)
   - Consistency (stable spending = better score)
   - Trend direction (decreasing expenses over time = better score)
5. **Next Month Prediction**: Predict next month's expenses based on current trends with a margin of error

Format your response as a valid JSON object with this exact structure:
{
  "summary": "string",
  "patterns": {
    "highestCategory": "string",
    "mostExpensiveDay": "string",
    "trend": "increasing|stable|decreasing",
    "trendExplanation": "string"
  },
  "recommendations": [
    {
      "tip": "string",
      "potentialSavings": number,
      "priority": "high|medium|low"
    }
  ],
  "financeScore": {
    "score": number (1-100),
    "explanation": "string",
    "factors": {
      "incomeExpenseRatio": "good|fair|poor",
      "stability": "high|medium|low",
      "trend": "improving|stable|declining"
    }
  },
  "prediction": {
    "estimatedExpense": number,
    "marginOfError": number,
    "explanation": "string",
    "confidence": "high|medium|low"
  }
}`

// transactionSummary is what the model gets to see of a transaction
type transactionSummary struct {
	Type     ledger.Type `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

func buildPrompt(transactions []*ledger.Transaction) (string, error) {
	summary := make([]transactionSummary, 0, len(transactions))
	for _, t := range transactions {
		summary = append(summary, transactionSummary{
			Type:     t.Type,
			Amount:   json.Number(t.Amount.String()),
			Category: t.Category,
			Date:     t.Date,
		})
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding transactions: %w", err)
	}
	return fmt.Sprintf(analysisPrompt, data), nil
}
