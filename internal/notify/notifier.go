// Package notify defines the notification interface and implementations
// for announcing free-game offers.
package notify

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// ErrNotify marks a failed delivery.
var ErrNotify = errors.New("notification failed")

// Notifier delivers a single offer announcement.
type Notifier interface {
	Notify(ctx context.Context, offer domain.Offer) error
}
