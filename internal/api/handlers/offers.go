package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// OfferLister fetches the offers currently free on the storefront.
type OfferLister interface {
	FetchCurrentOffers(ctx context.Context) ([]domain.Offer, error)
}

// OffersHandler handles GET /api/v1/offers.
type OffersHandler struct {
	catalog OfferLister
}

// NewOffersHandler creates an OffersHandler.
func NewOffersHandler(c OfferLister) *OffersHandler {
	return &OffersHandler{catalog: c}
}

// OffersOutput is the response for GET /api/v1/offers.
type OffersOutput struct {
	Body struct {
		Offers []domain.Offer `json:"offers" doc:"Current free-game offers"`
		Total  int            `json:"total"  doc:"Number of offers"`
	}
}

// ListOffers returns the live catalog without touching the identifier store.
func (h *OffersHandler) ListOffers(ctx context.Context, _ *struct{}) (*OffersOutput, error) {
	offers, err := h.catalog.FetchCurrentOffers(ctx)
	if err != nil {
		return nil, huma.Error502BadGateway("fetching offers failed: " + err.Error())
	}

	resp := &OffersOutput{}
	resp.Body.Offers = offers
	if resp.Body.Offers == nil {
		resp.Body.Offers = []domain.Offer{}
	}
	resp.Body.Total = len(offers)
	return resp, nil
}

// RegisterOffersRoutes registers the offers route on the Huma API.
func RegisterOffersRoutes(api huma.API, h *OffersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-offers",
		Method:      http.MethodGet,
		Path:        "/api/v1/offers",
		Summary:     "List current free games",
		Description: "Fetches the storefront catalog and returns every offer that is " +
			"free right now, whether or not it was already announced.",
		Tags:   []string{"offers"},
		Errors: []int{http.StatusBadGateway},
	}, h.ListOffers)
}
