package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded offers. It is used
// when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards offers with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Notify logs and discards the offer.
func (n *NoOpNotifier) Notify(_ context.Context, offer domain.Offer) error {
	n.log.Info("notification discarded (no webhook configured)",
		"offer_id", offer.ID,
		"title", offer.Title,
	)
	return nil
}
