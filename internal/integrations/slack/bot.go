package slackbot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"feedbackbot/internal/classify"
	"feedbackbot/internal/config"
	"feedbackbot/internal/domain"
	"feedbackbot/internal/ingest"
)

const (
	maxItemsPerCommand = 20
	maxInputPreview    = 120
)

// StartSlackBot answers /feedback slash commands over Socket Mode. It blocks
// until the connection ends.
func StartSlackBot(ctx context.Context, cfg config.Config, resolver *classify.Resolver, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(ctx, api, resolver, cmd)
			case socketmode.EventTypeEventsAPI, socketmode.EventTypeInteractive:
				client.Ack(*evt.Request)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.RunContext(ctx)
}

func handleSlashCommand(ctx context.Context, api *slack.Client, resolver *classify.Resolver, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/feedback":
		handleFeedback(ctx, api, resolver, cmd)
	case "/feedback-help":
		postEphemeral(api, cmd, helpText())
	}
}

func handleFeedback(ctx context.Context, api *slack.Client, resolver *classify.Resolver, cmd slack.SlashCommand) {
	items, dropped := prepareItems(cmd.Text)
	if len(items) == 0 {
		postEphemeral(api, cmd, helpText())
		return
	}

	if dropped > 0 {
		postEphemeral(api, cmd, fmt.Sprintf("Classifying the first %d items (%d more ignored)...", len(items), dropped))
	} else {
		postEphemeral(api, cmd, fmt.Sprintf("Classifying %d item(s)...", len(items)))
	}

	records := resolver.ClassifyAll(ctx, items)
	postEphemeral(api, cmd, FormatResults(records))
	log.Printf("feedback classified=%d dropped=%d user=%s", len(records), dropped, cmd.UserID)
}

// prepareItems splits command text into unique items and caps their number.
func prepareItems(text string) ([]string, int) {
	items := ingest.Dedupe(ingest.SplitManual(text))
	if len(items) <= maxItemsPerCommand {
		return items, 0
	}
	return items[:maxItemsPerCommand], len(items) - maxItemsPerCommand
}

// FormatResults renders records as Slack mrkdwn, one block per item.
func FormatResults(records []domain.ClassificationRecord) string {
	if len(records) == 0 {
		return "No feedback to classify."
	}
	counts := make(map[string]int)
	var order []string
	var lines []string
	for i, rec := range records {
		if counts[rec.Theme] == 0 {
			order = append(order, rec.Theme)
		}
		counts[rec.Theme]++

		lines = append(lines, fmt.Sprintf("%d. *%s* · %s", i+1, rec.Theme, rec.Sentiment))
		lines = append(lines, "> "+previewInput(rec.Input))
		if rec.Highlight != domain.NotAvailable {
			lines = append(lines, fmt.Sprintf("> _%s_", rec.Highlight))
		}
	}

	var summary []string
	for _, theme := range order {
		summary = append(summary, fmt.Sprintf("%s: %d", theme, counts[theme]))
	}
	return fmt.Sprintf("*Feedback results* (%s)\n%s", strings.Join(summary, ", "), strings.Join(lines, "\n"))
}

func previewInput(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxInputPreview {
		return s
	}
	return string(runes[:maxInputPreview]) + "…"
}

func helpText() string {
	lines := []string{
		"*FeedbackBot Commands*",
		"",
		"`/feedback <text>` — Classify customer feedback by theme and sentiment.",
		">Separate several items with new lines, `;` or `||`.",
		">*Example:* `/feedback Checkout kept failing; Support answered in minutes`",
		fmt.Sprintf(">At most %d items per command.", maxItemsPerCommand),
		"`/feedback-help` — Show this help.",
	}
	return strings.Join(lines, "\n")
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
