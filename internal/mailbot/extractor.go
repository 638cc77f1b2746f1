package mailbot

import (
	"fmt"
	"strings"
)

// MentionToken returns the markup Slack uses to mention the given user
func MentionToken(botUserID string) string {
	return fmt.Sprintf("<@%s>", botUserID)
}

// ExtractInstruction removes the first mention of the bot from text and trims
// the result. Text without the mention is only trimmed.
func ExtractInstruction(botUserID string, text string) string {
	return strings.TrimSpace(strings.Replace(text, MentionToken(botUserID), "", 1))
}
