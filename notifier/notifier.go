package notifier

import (
	"context"
	"log"
)

// Notifier delivers human-readable alerts to operators.
type Notifier interface {
	Send(text string) error
}

// RetrySender is implemented by notifiers whose transport can fail
// transiently. Callers with alerts worth waiting for (the scheduler's
// signal and risk-breach paths) prefer it over plain Send.
type RetrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// LogNotifier writes alerts to the process log. Used when Telegram is
// not configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(text string) error {
	log.Printf("[INFO] alert: %s", text)
	return nil
}
