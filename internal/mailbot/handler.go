package mailbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ca-srg/maildraft/internal/draft"
	"github.com/ca-srg/maildraft/internal/types"
	"github.com/ca-srg/maildraft/internal/usage"
)

const (
	// AckMessage is posted before drafting starts
	AckMessage = "Sure, I'll get right on that!"
	// FailureMessage is posted when drafting fails and failure notices are enabled
	FailureMessage = "Sorry, I couldn't draft that email. Please try again in a moment."
)

var mailbotTracer = otel.Tracer("maildraft/mailbot")

// MentionHandler turns an app mention into an acknowledgement and a drafted email
type MentionHandler struct {
	botUserID       string
	generator       draft.Generator
	logger          *log.Logger
	notifyOnFailure bool
	usage           UsageRecorder
	metrics         Metrics
}

// UsageRecorder persists per-day draft counts
type UsageRecorder interface {
	Record(ctx context.Context, source usage.Source, outcome usage.Outcome) error
}

// NewMentionHandler constructs a MentionHandler
func NewMentionHandler(botUserID string, generator draft.Generator, logger *log.Logger) (*MentionHandler, error) {
	if botUserID == "" {
		return nil, fmt.Errorf("bot user id is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("draft generator is required")
	}
	if logger == nil {
		logger = log.New(os.Stdout, "mailbot ", log.LstdFlags)
	}
	return &MentionHandler{
		botUserID: botUserID,
		generator: generator,
		logger:    logger,
	}, nil
}

// SetNotifyOnFailure posts FailureMessage when the generator fails
func (h *MentionHandler) SetNotifyOnFailure(v bool) { h.notifyOnFailure = v }

// SetUsageRecorder records every generator call under usage.SourceSlack
func (h *MentionHandler) SetUsageRecorder(r UsageRecorder) { h.usage = r }

// Metrics exposes the in-process counters
func (h *MentionHandler) Metrics() *Metrics { return &h.metrics }

// Handle acknowledges the mention, drafts an email from its text and posts the draft.
// The acknowledgement is always sent first; a generator failure is returned after it.
func (h *MentionHandler) Handle(ctx context.Context, event types.MentionEvent, m Messenger) (err error) {
	ctx, span := mailbotTracer.Start(ctx, "mailbot.handle_mention")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("slack.channel", event.Channel),
		attribute.Bool("slack.is_thread", event.IsThread()),
	}
	span.SetAttributes(append(attrs,
		attribute.String("slack.user_id", event.User),
		attribute.String("slack.event_id", event.EventID),
	)...)

	h.metrics.RecordMention()
	start := time.Now()
	status := "ok"
	defer func() {
		if err != nil {
			status = "error"
			h.metrics.RecordError()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		recordMentionMetrics(ctx, append(attrs, attribute.String("mention.status", status)), time.Since(start), err != nil)
	}()

	instruction := ExtractInstruction(h.botUserID, event.Text)
	span.SetAttributes(attribute.Int("mention.instruction.length", len(instruction)))

	if err := m.Post(ctx, AckMessage); err != nil {
		return fmt.Errorf("sending acknowledgement: %w", err)
	}

	email, err := h.generator.Draft(ctx, instruction)
	h.recordUsage(ctx, err)
	if err != nil {
		if h.notifyOnFailure {
			if postErr := m.Post(ctx, FailureMessage); postErr != nil {
				h.logger.Printf("event=failure_notice status=error channel=%s err=%v", event.Channel, postErr)
			}
		}
		return fmt.Errorf("drafting email: %w", err)
	}

	if err := m.Post(ctx, email); err != nil {
		return fmt.Errorf("sending draft: %w", err)
	}

	h.metrics.RecordDraft(time.Since(start))
	h.logger.Printf("event=draft_sent status=ok channel=%s duration=%s", event.Channel, time.Since(start).Round(time.Millisecond))
	return nil
}

func (h *MentionHandler) recordUsage(ctx context.Context, draftErr error) {
	if h.usage == nil {
		return
	}
	outcome := usage.OutcomeOK
	if draftErr != nil {
		outcome = usage.OutcomeError
	}
	if err := h.usage.Record(ctx, usage.SourceSlack, outcome); err != nil {
		h.logger.Printf("event=usage_record status=error err=%v", err)
	}
}
