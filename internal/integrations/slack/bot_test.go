package slackbot

import (
	"fmt"
	"strings"
	"testing"

	"feedbackbot/internal/domain"
)

func TestPrepareItems(t *testing.T) {
	items, dropped := prepareItems("Checkout failed; Checkout failed || Support was great\n\n")
	if len(items) != 2 || dropped != 0 {
		t.Fatalf("got items=%v dropped=%d", items, dropped)
	}
	if items[0] != "Checkout failed" || items[1] != "Support was great" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestPrepareItemsCaps(t *testing.T) {
	var parts []string
	for i := 0; i < maxItemsPerCommand+5; i++ {
		parts = append(parts, fmt.Sprintf("item %d", i))
	}
	items, dropped := prepareItems(strings.Join(parts, ";"))
	if len(items) != maxItemsPerCommand || dropped != 5 {
		t.Fatalf("expected %d items and 5 dropped, got %d and %d", maxItemsPerCommand, len(items), dropped)
	}
	if items[0] != "item 0" {
		t.Fatalf("expected input order kept, got %q first", items[0])
	}
}

func TestFormatResults(t *testing.T) {
	records := []domain.ClassificationRecord{
		{Input: "Cart   emptied\nitself", Theme: "Checkout", Sentiment: "Negative", Highlight: "cart emptied"},
		{Input: "hello", Theme: domain.NotAvailable, Sentiment: domain.NotAvailable, Highlight: domain.NotAvailable},
		{Input: "Card declined", Theme: "Checkout", Sentiment: "Negative", Highlight: "card declined"},
	}
	got := FormatResults(records)
	want := strings.Join([]string{
		"*Feedback results* (Checkout: 2, N/A: 1)",
		"1. *Checkout* · Negative",
		"> Cart emptied itself",
		"> _cart emptied_",
		"2. *N/A* · N/A",
		"> hello",
		"3. *Checkout* · Negative",
		"> Card declined",
		"> _card declined_",
	}, "\n")
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	if got := FormatResults(nil); got != "No feedback to classify." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPreviewInputTruncates(t *testing.T) {
	long := strings.Repeat("é", maxInputPreview+10)
	got := previewInput(long)
	if len([]rune(got)) != maxInputPreview+1 || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected preview %q", got)
	}
}

func TestHelpTextMentionsCommands(t *testing.T) {
	help := helpText()
	for _, want := range []string{"/feedback", "/feedback-help", "||"} {
		if !strings.Contains(help, want) {
			t.Fatalf("help missing %q", want)
		}
	}
}
