package draft

import (
	"fmt"
	"strings"
)

// Prompt is the system/user message pair sent to a completion model
type Prompt struct {
	System string
	User   string
}

// BuildPrompt turns an instruction into the email drafting prompt.
// signerName personalises the greeting and the signature when set.
func BuildPrompt(instruction, signerName string) Prompt {
	signerName = strings.TrimSpace(signerName)

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant that drafts email replies.\n")
	sb.WriteString("Your goal is to help the user quickly put together a good reply to the email they share.\n")
	sb.WriteString("Keep the reply short and to the point, and mirror the style and tone of the original email.\n")
	if signerName != "" {
		sb.WriteString(fmt.Sprintf("Start your answer with \"Hi %s, here's a draft for your reply:\" and write the reply on a new line.\n", signerName))
		sb.WriteString(fmt.Sprintf("Sign off the reply with:\nKind regards,\n%s\n", signerName))
	} else {
		sb.WriteString("Start your answer with \"Here's a draft for your reply:\" and write the reply on a new line.\n")
		sb.WriteString("Sign off the reply with \"Kind regards,\".\n")
	}

	return Prompt{
		System: sb.String(),
		User:   "Here's the email to reply to, along with any comments from the user about the reply: " + instruction,
	}
}
