package verification

import (
	"context"
	"log/slog"
)

// LogSender writes codes to the log instead of delivering them. Development
// and test use only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, channel Channel, destination, code string) error {
	l.logger.InfoContext(ctx, "verification code issued",
		"channel", channel, "destination", destination, "code", code)
	return nil
}
