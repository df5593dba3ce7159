// Package analytics forwards product events to the structured log.
package analytics

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Properties that could identify a user or a subscription are dropped before logging.
var scrubbed = map[string]bool{
	"name":            true,
	"subscription_id": true,
	"amount":          true,
	"chat_id":         true,
}

// LogSink writes each event as one info line with event=<name>.
type LogSink struct {
	logger *logrus.Entry
}

func NewLogSink(logger *logrus.Entry) *LogSink {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Track(_ context.Context, event string, props map[string]any) {
	fields := logrus.Fields{"event": event}
	for k, v := range props {
		if scrubbed[k] {
			continue
		}
		fields["prop_"+k] = v
	}
	s.logger.WithFields(fields).Info("Analytics event")
}
