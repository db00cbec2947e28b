package themes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScoreVectorCoversEveryTheme(t *testing.T) {
	v := DefaultVocabulary()
	inputs := []string{"", "hello", "The checkout was slow and the refund is late"}
	for _, in := range inputs {
		got := v.Score(in)
		if len(got.Scores) != len(v.IDs()) {
			t.Fatalf("Score(%q) has %d themes, want %d", in, len(got.Scores), len(v.IDs()))
		}
		for _, id := range v.IDs() {
			n, ok := got.Scores[id]
			if !ok {
				t.Fatalf("Score(%q) missing theme %s", in, id)
			}
			if n < 0 {
				t.Fatalf("Score(%q) negative count for %s: %d", in, id, n)
			}
		}
	}
}

func TestScoreWholeWordsOnly(t *testing.T) {
	v := DefaultVocabulary()
	got := v.Score("I need to find good childcare")
	if got.Scores["checkout"] != 0 {
		t.Fatalf("expected card not to match inside childcare, checkout=%d", got.Scores["checkout"])
	}
	if got.Matched() {
		t.Fatalf("expected no keyword match, got %+v", got)
	}
	if got.Theme != "checkout" || got.BestScore != 0 {
		t.Fatalf("expected first theme with zero score when nothing matches, got %s=%d", got.Theme, got.BestScore)
	}
}

func TestScoreScenarios(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		name      string
		text      string
		wantTheme string
		wantScore int
	}{
		{
			name:      "support",
			text:      "I waited 30 minutes to get a response from the support team. Totally unacceptable!",
			wantTheme: "support",
			wantScore: 2,
		},
		{
			name:      "checkout beats ux on tie",
			text:      "The website checkout process was confusing and made me almost abandon my cart.",
			wantTheme: "checkout",
			wantScore: 2,
		},
		{
			name:      "pricing",
			text:      "The price is way too expensive",
			wantTheme: "pricing",
			wantScore: 2,
		},
		{
			name:      "repeats count once",
			text:      "cart cart cart",
			wantTheme: "checkout",
			wantScore: 1,
		},
		{
			name:      "phrase and its prefix both count",
			text:      "The payment gateway failed",
			wantTheme: "checkout",
			wantScore: 2,
		},
		{
			name:      "case and punctuation",
			text:      "REFUND?! still waiting on my Refund...",
			wantTheme: "returns",
			wantScore: 1,
		},
		{
			name:      "hyphenated phrase",
			text:      "the user-interface hides everything",
			wantTheme: "ux",
			wantScore: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Score(tc.text)
			if got.Theme != tc.wantTheme || got.BestScore != tc.wantScore {
				t.Fatalf("Score(%q) = %s/%d, want %s/%d (scores=%v)", tc.text, got.Theme, got.BestScore, tc.wantTheme, tc.wantScore, got.Scores)
			}
		})
	}
}

func TestScoreTieBreakIsStable(t *testing.T) {
	v := DefaultVocabulary()
	text := "The website checkout process was confusing and made me almost abandon my cart."
	first := v.Score(text)
	if first.Scores["ux"] != first.Scores["checkout"] {
		t.Fatalf("expected a tie between checkout and ux, got %v", first.Scores)
	}
	for i := 0; i < 50; i++ {
		if got := v.Score(text); got.Theme != first.Theme {
			t.Fatalf("tie-break changed on call %d: %s vs %s", i, got.Theme, first.Theme)
		}
	}
	if first.Display != "Checkout" {
		t.Fatalf("unexpected display name %q", first.Display)
	}
}

func TestScoreRanking(t *testing.T) {
	v := DefaultVocabulary()
	ranking := v.Score("The website checkout process was confusing and made me almost abandon my cart.").Ranking()
	if len(ranking) != 8 {
		t.Fatalf("expected 8 ranked themes, got %d", len(ranking))
	}
	if ranking[0].Theme != "checkout" || ranking[1].Theme != "ux" {
		t.Fatalf("unexpected ranking head: %+v", ranking[:2])
	}
	if ranking[2].Theme != "support" || ranking[2].Score != 0 {
		t.Fatalf("expected zero-score themes in vocabulary order, got %+v", ranking[2])
	}
}

func TestNormalizeThemeName(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Checkout Issues", "Checkout"},
		{"support", "Support"},
		{"Customer Service", "Support"},
		{"UI issues", "UX"},
		{"ux", "UX"},
		{"Slowness", "Performance"},
		{"Product quality", "Product"},
		{"General", "General"},
		{"  brand perception ", "Brand Perception"},
	}
	for _, tc := range tests {
		if got := v.NormalizeThemeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeThemeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewVocabularyDuplicatePhrase(t *testing.T) {
	v, err := NewVocabulary([]Theme{
		{ID: "alpha", Triggers: []string{"shared", "one"}},
		{ID: "beta", Triggers: []string{"Shared"}},
	})
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	owner, ok := v.ThemeForPhrase("shared")
	if !ok || owner != "beta" {
		t.Fatalf("expected later theme to own duplicate phrase, got %q ok=%v", owner, ok)
	}
	got := v.Score("a shared thing")
	if got.Scores["alpha"] != 1 || got.Scores["beta"] != 1 {
		t.Fatalf("expected duplicate phrase to score for both themes, got %v", got.Scores)
	}
	if got.Theme != "alpha" {
		t.Fatalf("expected tie to go to first theme, got %s", got.Theme)
	}
	if name := v.NormalizeThemeName("something shared"); name != "Beta" {
		t.Fatalf("expected name lookup to use reverse index owner, got %q", name)
	}
}

func TestNewVocabularyRejectsInvalid(t *testing.T) {
	if _, err := NewVocabulary(nil); err == nil {
		t.Fatal("expected error for empty vocabulary")
	}
	if _, err := NewVocabulary([]Theme{{ID: " "}}); err == nil {
		t.Fatal("expected error for blank theme id")
	}
	if _, err := NewVocabulary([]Theme{{ID: "a"}, {ID: "A"}}); err == nil {
		t.Fatal("expected error for duplicate theme id")
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	content := `
themes:
  - id: onboarding
    display: Onboarding
    triggers: ["sign up", "welcome email"]
  - id: billing
    triggers: [invoice]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}
	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if ids := v.IDs(); len(ids) != 2 || ids[0] != "onboarding" || ids[1] != "billing" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if v.Display("billing") != "Billing" {
		t.Fatalf("expected default display to be capitalized, got %q", v.Display("billing"))
	}
	got := v.Score("I could not sign up, and the invoice never came")
	if got.Scores["onboarding"] != 1 || got.Scores["billing"] != 1 || got.Theme != "onboarding" {
		t.Fatalf("unexpected scores: %+v", got)
	}

	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing vocabulary file")
	}
}
