package mock

import (
	"context"
	"log/slog"
)

// Dispatcher is a stand-in CallbackDispatcher for local runs without a
// broker: it just logs the callback.
type Dispatcher struct {
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, payload map[string]any) error {
	d.logger.Info("webhook callback received",
		"orderReference", payload["orderReference"],
		"transactionStatus", payload["transactionStatus"],
	)
	return nil
}

func (d *Dispatcher) Close() {}
