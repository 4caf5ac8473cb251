// Package epic fetches the Epic Games Store free-games promotion catalog and
// normalizes it into domain offers.
package epic

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// ErrFetch marks a failed catalog fetch: transport error, non-2xx status,
// or an unparseable payload.
var ErrFetch = errors.New("catalog fetch failed")

// CatalogClient defines the interface for reading the current free offers.
type CatalogClient interface {
	FetchCurrentOffers(ctx context.Context) ([]domain.Offer, error)
}
