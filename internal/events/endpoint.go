// Package events receives Slack Events API deliveries over HTTP.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/ca-srg/maildraft/internal/types"
)

// Path is the route Slack delivers events to
const Path = "/slack/events"

// maxBodyBytes bounds the size of an event envelope
const maxBodyBytes = 1 << 20

// MentionDispatcher handles app mentions
type MentionDispatcher interface {
	HandleMention(ctx context.Context, event types.MentionEvent) error
}

// Endpoint verifies, parses and dispatches Slack event deliveries
type Endpoint struct {
	signingSecret string
	logger        *log.Logger
	inflight      *inflight
}

// NewEndpoint constructs an Endpoint
func NewEndpoint(signingSecret string, dispatcher MentionDispatcher, logger *log.Logger) (*Endpoint, error) {
	if signingSecret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("mention dispatcher is required")
	}
	if logger == nil {
		logger = log.New(os.Stdout, "events ", log.LstdFlags)
	}
	return &Endpoint{
		signingSecret: signingSecret,
		logger:        logger,
		inflight:      &inflight{dispatcher: dispatcher, reporter: &logReporter{logger: logger}},
	}, nil
}

// SetErrorReporter replaces the reporter used for dropped handler errors
func (e *Endpoint) SetErrorReporter(r ErrorReporter) {
	if r != nil {
		e.inflight.reporter = r
	}
}

// ServeHTTP implements http.Handler
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.New().String()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		e.logger.Printf("event=read_body status=error request_id=%s err=%v", requestID, err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := e.verify(r.Header, body); err != nil {
		e.logger.Printf("event=verify_signature status=error request_id=%s err=%v", requestID, err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// Signatures authenticate the request, so the legacy verification token is not checked.
	envelope, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		e.logger.Printf("event=parse status=error request_id=%s err=%v", requestID, err)
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "failed to parse challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, challenge.Challenge)
	case slackevents.CallbackEvent:
		e.handleCallback(r, requestID, body, envelope)
		w.WriteHeader(http.StatusOK)
	default:
		e.logger.Printf("event=ignored type=%s request_id=%s", envelope.Type, requestID)
		w.WriteHeader(http.StatusOK)
	}
}

func (e *Endpoint) verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, e.signingSecret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

func (e *Endpoint) handleCallback(r *http.Request, requestID string, body []byte, envelope slackevents.EventsAPIEvent) {
	mention, ok := envelope.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		e.logger.Printf("event=ignored type=%s request_id=%s", envelope.InnerEvent.Type, requestID)
		return
	}

	event := mentionFromEvent(callbackEventID(body), mention)

	// Slack redelivers when it does not see a timely 200; deliveries are not deduplicated.
	if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
		e.logger.Printf("event=app_mention retry=%s reason=%s event_id=%s request_id=%s",
			retry, r.Header.Get("X-Slack-Retry-Reason"), event.EventID, requestID)
	}

	e.inflight.dispatch(r.Context(), event, requestID)
}

// Wait blocks until every dispatched mention has finished or ctx is done
func (e *Endpoint) Wait(ctx context.Context) error {
	return e.inflight.wait(ctx)
}

func callbackEventID(body []byte) string {
	var cb struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &cb); err != nil {
		return ""
	}
	return cb.EventID
}
