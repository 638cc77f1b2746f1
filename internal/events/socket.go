package events

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// socketClient is the part of *socketmode.Client the listener drives
type socketClient interface {
	RunContext(ctx context.Context) error
	Ack(req socketmode.Request, payload ...interface{})
}

// SocketListener receives app mentions over Socket Mode (xapp- token) instead of HTTP
type SocketListener struct {
	client   socketClient
	events   <-chan socketmode.Event
	logger   *log.Logger
	inflight *inflight
}

// NewSocketListener constructs a SocketListener. api must carry the app-level
// token via slack.OptionAppLevelToken.
func NewSocketListener(api *slack.Client, dispatcher MentionDispatcher, logger *log.Logger) (*SocketListener, error) {
	if api == nil {
		return nil, fmt.Errorf("nil slack client")
	}
	sm := socketmode.New(api)
	return newSocketListener(sm, sm.Events, dispatcher, logger)
}

func newSocketListener(client socketClient, events <-chan socketmode.Event, dispatcher MentionDispatcher, logger *log.Logger) (*SocketListener, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("mention dispatcher is required")
	}
	if logger == nil {
		logger = log.New(os.Stdout, "socketmode ", log.LstdFlags)
	}
	return &SocketListener{
		client:   client,
		events:   events,
		logger:   logger,
		inflight: &inflight{dispatcher: dispatcher, reporter: &logReporter{logger: logger}},
	}, nil
}

// SetErrorReporter replaces the reporter used for dropped handler errors
func (l *SocketListener) SetErrorReporter(r ErrorReporter) {
	if r != nil {
		l.inflight.reporter = r
	}
}

// Run reads Socket Mode events until ctx is cancelled or the connection fails
func (l *SocketListener) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.client.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("socket mode: %w", err)
		case ev, ok := <-l.events:
			if !ok {
				return nil
			}
			l.handleEvent(ctx, ev)
		}
	}
}

// Wait blocks until every dispatched mention has finished or ctx is done
func (l *SocketListener) Wait(ctx context.Context) error {
	return l.inflight.wait(ctx)
}

func (l *SocketListener) handleEvent(ctx context.Context, ev socketmode.Event) {
	switch ev.Type {
	case socketmode.EventTypeConnecting, socketmode.EventTypeConnected:
		l.logger.Printf("event=socket_%s", ev.Type)
	case socketmode.EventTypeInvalidAuth:
		l.logger.Printf("event=socket_invalid_auth status=error hint=verify SLACK_APP_TOKEN and SLACK_BOT_TOKEN")
	case socketmode.EventTypeConnectionError:
		l.logger.Printf("event=socket_connection_error status=error err=%v", ev.Data)
	case socketmode.EventTypeIncomingError:
		l.logger.Printf("event=socket_incoming_error status=error err=%v", ev.Data)
	case socketmode.EventTypeEventsAPI:
		// Ack first to avoid redelivery.
		if ev.Request != nil {
			l.client.Ack(*ev.Request)
		}
		payload, ok := ev.Data.(slackevents.EventsAPIEvent)
		if !ok || payload.Type != slackevents.CallbackEvent {
			return
		}
		mention, ok := payload.InnerEvent.Data.(*slackevents.AppMentionEvent)
		if !ok {
			l.logger.Printf("event=ignored type=%s", payload.InnerEvent.Type)
			return
		}

		var eventID string
		if cb, ok := payload.Data.(*slackevents.EventsAPICallbackEvent); ok {
			eventID = cb.EventID
		}
		requestID := uuid.New().String()
		if ev.Request != nil && ev.Request.RetryAttempt > 0 {
			l.logger.Printf("event=app_mention retry=%d reason=%s event_id=%s request_id=%s",
				ev.Request.RetryAttempt, ev.Request.RetryReason, eventID, requestID)
		}
		l.inflight.dispatch(ctx, mentionFromEvent(eventID, mention), requestID)
	}
}
