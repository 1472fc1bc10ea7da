package insights

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseInsights decodes the outermost JSON object in a model reply, ignoring
// any prose or code fences around it.
func parseInsights(reply string) (*Insights, error) {
	text := strings.TrimSpace(reply)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var insights Insights
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return &insights, nil
}
