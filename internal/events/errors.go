package events

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// ErrorReporter receives errors from mention handlers that have no caller left to return to
type ErrorReporter interface {
	Report(err error, context map[string]string)
}

type logReporter struct {
	logger *log.Logger
}

func (l *logReporter) Report(err error, context map[string]string) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s=%s ", k, context[k]))
	}
	l.logger.Printf("%sstatus=error err=%v", sb.String(), err)
}
