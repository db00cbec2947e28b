package domain

import "strings"

// NotAvailable is the sentinel written into any field no signal could fill.
const NotAvailable = "N/A"

const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// ClassificationRecord is the result for one feedback item. Input is the
// cleaned text. Theme, Sentiment and Highlight are never empty; NotAvailable
// stands in for a missing value.
type ClassificationRecord struct {
	Input       string       `json:"input"`
	Theme       string       `json:"theme"`
	Sentiment   string       `json:"sentiment"`
	Highlight   string       `json:"highlight"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics records every intermediate value of a classification. Nothing
// downstream may branch on it.
type Diagnostics struct {
	RawInput             string         `json:"raw_input"`
	RawModelOutput       string         `json:"raw_model_output"`
	ModelTheme           string         `json:"model_theme"`
	NormalizedModelTheme string         `json:"normalized_model_theme"`
	KeywordTheme         string         `json:"keyword_theme"`
	KeywordScore         int            `json:"keyword_score"`
	KeywordScores        map[string]int `json:"keyword_scores"`
	KeywordOverride      bool           `json:"keyword_override"`
	ModelError           string         `json:"model_error,omitempty"`
	ExtractionError      string         `json:"extraction_error,omitempty"`
	Provider             string         `json:"provider,omitempty"`
	Model                string         `json:"model,omitempty"`
	InputTokens          int64          `json:"input_tokens,omitempty"`
	OutputTokens         int64          `json:"output_tokens,omitempty"`
}

// WithoutDiagnostics returns a copy fit for consumers that only render the
// four primary fields.
func (r ClassificationRecord) WithoutDiagnostics() ClassificationRecord {
	r.Diagnostics = nil
	return r
}

// StripDiagnostics applies WithoutDiagnostics to a batch, keeping order.
func StripDiagnostics(records []ClassificationRecord) []ClassificationRecord {
	out := make([]ClassificationRecord, len(records))
	for i, r := range records {
		out[i] = r.WithoutDiagnostics()
	}
	return out
}

// OrNotAvailable returns s, or the sentinel when s is blank.
func OrNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
