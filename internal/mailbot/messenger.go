package mailbot

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/ca-srg/maildraft/internal/types"
)

// Messenger sends text back to wherever a mention came from
type Messenger interface {
	Post(ctx context.Context, text string) error
}

// MessagePoster wraps the subset of slack.Client used to reply
type MessagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// ChannelMessenger posts to the channel (and optionally the thread) of one mention
type ChannelMessenger struct {
	poster   MessagePoster
	channel  string
	threadTS string
}

// NewChannelMessenger builds a Messenger bound to the mention's channel.
// With inThread set, replies go to the mention's thread, starting one if needed.
func NewChannelMessenger(poster MessagePoster, event types.MentionEvent, inThread bool) *ChannelMessenger {
	m := &ChannelMessenger{poster: poster, channel: event.Channel}
	if inThread {
		m.threadTS = event.ThreadTimeStamp
		if m.threadTS == "" {
			m.threadTS = event.TimeStamp
		}
	}
	return m
}

// Post implements Messenger
func (m *ChannelMessenger) Post(ctx context.Context, text string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if m.threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(m.threadTS))
	}
	if _, _, err := m.poster.PostMessageContext(ctx, m.channel, opts...); err != nil {
		return fmt.Errorf("post message to %s: %w", m.channel, err)
	}
	return nil
}
