package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack/slackevents"

	"github.com/ca-srg/maildraft/internal/types"
)

// inflight runs mention handlers on their own goroutines and tracks them for shutdown
type inflight struct {
	dispatcher MentionDispatcher
	reporter   ErrorReporter
	wg         sync.WaitGroup
}

func (f *inflight) dispatch(ctx context.Context, event types.MentionEvent, requestID string) {
	// The handler outlives the delivery so Slack gets its acknowledgement immediately.
	ctx = context.WithoutCancel(ctx)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.dispatcher.HandleMention(ctx, event); err != nil {
			f.reporter.Report(err, map[string]string{
				"event":      "app_mention",
				"channel":    event.Channel,
				"event_id":   event.EventID,
				"request_id": requestID,
			})
		}
	}()
}

func (f *inflight) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight mentions: %w", ctx.Err())
	}
}

func mentionFromEvent(eventID string, m *slackevents.AppMentionEvent) types.MentionEvent {
	return types.MentionEvent{
		EventID:         eventID,
		Channel:         m.Channel,
		User:            m.User,
		Text:            m.Text,
		TimeStamp:       m.TimeStamp,
		ThreadTimeStamp: m.ThreadTimeStamp,
	}
}
