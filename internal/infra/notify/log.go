package notify

import (
	"context"
	"log/slog"
)

// Log writes notices to the logger only.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, message string) error {
	l.logger.Warn("notice", "message", message)
	return nil
}
