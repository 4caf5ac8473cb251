package client

import (
	"context"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// CheckResponse mirrors the body of GET /api/v1/check.
type CheckResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Games   []domain.Offer `json:"games,omitempty"`
}

// RunCheck asks the server to run a cycle now and returns its summary.
func (c *Client) RunCheck(ctx context.Context) (*CheckResponse, error) {
	var resp CheckResponse
	if err := c.get(ctx, "/api/v1/check", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OffersResponse mirrors the body of GET /api/v1/offers.
type OffersResponse struct {
	Offers []domain.Offer `json:"offers"`
	Total  int            `json:"total"`
}

// ListOffers returns the offers currently free on the storefront.
func (c *Client) ListOffers(ctx context.Context) (*OffersResponse, error) {
	var resp OffersResponse
	if err := c.get(ctx, "/api/v1/offers", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Healthz returns the liveness message.
func (c *Client) Healthz(ctx context.Context) (string, error) {
	body, err := c.fetch(ctx, "/healthz")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Ready reports whether the server's readiness probe passes.
func (c *Client) Ready(ctx context.Context) error {
	return c.get(ctx, "/readyz", nil)
}
