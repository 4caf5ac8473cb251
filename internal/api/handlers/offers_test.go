package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/free-games-notifier/internal/api/handlers"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

type stubLister struct {
	offers []domain.Offer
	err    error
}

func (s *stubLister) FetchCurrentOffers(_ context.Context) ([]domain.Offer, error) {
	return s.offers, s.err
}

func TestListOffers_Success(t *testing.T) {
	t.Parallel()

	h := handlers.NewOffersHandler(&stubLister{offers: []domain.Offer{
		{ID: "A1", Title: "Hollow Orbit"},
		{ID: "B2", Title: "Lantern Keeper"},
	}})

	_, api := humatest.New(t)
	handlers.RegisterOffersRoutes(api, h)

	resp := api.Get("/api/v1/offers")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":2`)
	assert.Contains(t, resp.Body.String(), `"title":"Lantern Keeper"`)
}

func TestListOffers_Empty(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterOffersRoutes(api, handlers.NewOffersHandler(&stubLister{}))

	resp := api.Get("/api/v1/offers")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"offers":[]`)
}

func TestListOffers_UpstreamError(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterOffersRoutes(api, handlers.NewOffersHandler(&stubLister{err: errors.New("status 503")}))

	resp := api.Get("/api/v1/offers")
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "fetching offers failed")
}
