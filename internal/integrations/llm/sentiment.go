package llm

import (
	"strings"

	"feedbackbot/internal/domain"
)

func normalizeSentiment(sentiment string) string {
	switch strings.ToLower(strings.TrimSpace(sentiment)) {
	case "positive":
		return domain.SentimentPositive
	case "negative":
		return domain.SentimentNegative
	case "neutral":
		return domain.SentimentNeutral
	default:
		return strings.TrimSpace(sentiment)
	}
}
