package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/events"
)

// CountdownDismisser closes an open countdown dialog.
type CountdownDismisser interface {
	Dismiss(email string) bool
}

// StartCountdownWorker closes open countdowns once the account they belong to changes,
// so a dialog never outlives the suspension it was opened for.
func StartCountdownWorker(dispatcher events.Dispatcher, countdowns CountdownDismisser, logger *zap.Logger) {
	if dispatcher == nil || countdowns == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dismiss := func(_ context.Context, event events.Event) error {
		if countdowns.Dismiss(event.Email) {
			logger.Debug("countdown dismissed",
				zap.String("email", event.Email),
				zap.String("event_type", string(event.Type)))
		}
		return nil
	}

	dispatcher.Subscribe(events.EventAccountSuspended, dismiss)
	dispatcher.Subscribe(events.EventAccountActivated, dismiss)
	dispatcher.Subscribe(events.EventAccountReactivated, dismiss)
	dispatcher.Subscribe(events.EventAccountDeleted, dismiss)
}
