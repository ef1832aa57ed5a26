package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// Drafter writes suggested notes for a day with the Anthropic Messages API.
type Drafter struct {
	client  anthropic.Client
	model   string
	enabled bool
	log     *slog.Logger
}

// NewDrafter creates a Drafter. With an empty apiKey the Drafter is
// disabled and Draft returns ErrUnavailable. opts are passed to the client,
// e.g. option.WithBaseURL in tests.
func NewDrafter(apiKey, model string, logger *slog.Logger, opts ...option.RequestOption) *Drafter {
	if model == "" {
		model = DefaultModel
	}
	d := &Drafter{
		model:   model,
		enabled: apiKey != "",
		log:     logger.With("adapter", "anthropic"),
	}
	if d.enabled {
		d.client = anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	}
	return d
}

// Enabled reports whether an API key was configured.
func (d *Drafter) Enabled() bool { return d.enabled }

// Draft returns suggested markdown notes for day. hint is optional free
// text from the owner (e.g. "museums, cheap eats").
func (d *Drafter) Draft(ctx context.Context, day domain.DayRecord, hint string) (string, error) {
	if !d.enabled {
		return "", ErrUnavailable
	}

	msg, err := d.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(d.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(day, hint))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("enrich.Drafter.Draft: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("enrich.Drafter.Draft: empty response for %s", day.ID)
	}

	d.log.DebugContext(ctx, "draft generated", slog.String("day", day.ID), slog.Int("chars", len(text)))
	return text, nil
}

func buildPrompt(day domain.DayRecord, hint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are helping plan a trip. Draft short markdown notes for %s, %s in %s",
		day.DayOfWeek, day.Date.Format("2 January 2006"), day.City)
	if day.Title != "" && day.Title != day.City {
		fmt.Fprintf(&b, " (%s)", day.Title)
	}
	b.WriteString(".\n\nSuggest a loose morning, afternoon and evening plan with two or three concrete places. ")
	if day.City == TravelCity {
		b.WriteString("This is a travel day, so keep it light and focused on the journey. ")
	}
	if hint = strings.TrimSpace(hint); hint != "" {
		fmt.Fprintf(&b, "The traveller is interested in: %s. ", hint)
	}
	b.WriteString("Output only the markdown notes, no preamble.")
	return b.String()
}
