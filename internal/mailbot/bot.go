package mailbot

import (
	"context"

	"github.com/ca-srg/maildraft/internal/types"
)

// Bot binds the mention handler to a Slack client
type Bot struct {
	poster       MessagePoster
	handler      *MentionHandler
	enableThread bool
}

// NewBot constructs a Bot replying through poster
func NewBot(poster MessagePoster, handler *MentionHandler) *Bot {
	return &Bot{poster: poster, handler: handler}
}

// Option setters
func (b *Bot) SetEnableThreading(v bool) { b.enableThread = v }

// HandleMention replies to one app mention in its originating channel
func (b *Bot) HandleMention(ctx context.Context, event types.MentionEvent) error {
	return b.handler.Handle(ctx, event, NewChannelMessenger(b.poster, event, b.enableThread))
}
