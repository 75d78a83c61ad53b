package mailer

import (
	"context"

	"github.com/ignite/list-engine/internal/pkg/logger"
)

// LogSink logs messages instead of delivering them. It stands in for a real
// transport in development and when no SES credentials are configured.
type LogSink struct{}

func (LogSink) Send(_ context.Context, msg Message, content Content) error {
	logger.Info("mail sink disabled, message logged",
		"to", msg.To.Address,
		"from", msg.From.Address,
		"subject", msg.Subject,
		"textBytes", len(content.Text),
		"htmlBytes", len(content.HTML))
	return nil
}
