package types

// MentionEvent captures an app_mention delivered by Slack
type MentionEvent struct {
	EventID         string
	Channel         string
	User            string
	Text            string
	TimeStamp       string
	ThreadTimeStamp string
}

// IsThread reports whether the mention was posted inside a thread
func (m MentionEvent) IsThread() bool {
	return m.ThreadTimeStamp != ""
}
