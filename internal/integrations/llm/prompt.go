package llm

import (
	"fmt"
	"strings"
)

type promptExample struct {
	Feedback  string
	Theme     string
	Sentiment string
	Highlight string
}

var promptExamples = []promptExample{
	{
		Feedback:  "I was charged twice for the same order and nobody answered my emails.",
		Theme:     "Support",
		Sentiment: "Negative",
		Highlight: "double charge with no reply from support",
	},
	{
		Feedback:  "My package arrived two days early and well wrapped. Great job!",
		Theme:     "Delivery",
		Sentiment: "Positive",
		Highlight: "package arrived two days early",
	},
	{
		Feedback:  "The new plan costs the same as the old one but has fewer features.",
		Theme:     "Pricing",
		Sentiment: "Neutral",
		Highlight: "same price with fewer features",
	},
}

// BuildClassificationPrompt asks for a single JSON object with the keys
// theme, sentiment and highlight, steered by a few worked examples.
func BuildClassificationPrompt(feedback string, themeNames []string) string {
	var examples strings.Builder
	for _, ex := range promptExamples {
		examples.WriteString(fmt.Sprintf("Feedback: %q\n{\"theme\": %q, \"sentiment\": %q, \"highlight\": %q}\n\n",
			ex.Feedback, ex.Theme, ex.Sentiment, ex.Highlight))
	}

	return fmt.Sprintf(`You classify customer feedback.
Analyze the feedback and return ONLY a JSON object with exactly these keys:
- theme: one label from: %s
- sentiment: Positive, Negative, or Neutral
- highlight: a short phrase naming the key point

Respond with JSON only (no markdown, no explanation).

Examples:
%sFeedback: %q
`, strings.Join(themeNames, ", "), examples.String(), feedback)
}
