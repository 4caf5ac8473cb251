package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// Cycler runs one check cycle.
type Cycler interface {
	RunCycle(ctx context.Context, trigger domain.Trigger) (domain.CycleResult, error)
}

// CheckHandler handles on-demand check requests.
type CheckHandler struct {
	cycler Cycler
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(c Cycler) *CheckHandler {
	return &CheckHandler{cycler: c}
}

// CheckResponse is the JSON body returned by the check endpoint.
type CheckResponse struct {
	Success bool           `json:"success" example:"true" doc:"Whether the cycle completed"`
	Message string         `json:"message" example:"found 1 new free game(s)" doc:"Human readable summary"`
	Games   []domain.Offer `json:"games,omitempty" doc:"Offers announced by this cycle"`
}

// CheckOutput is the response for GET /api/v1/check.
type CheckOutput struct {
	Body CheckResponse
}

// Check runs a manual cycle and reports the offers it announced.
func (h *CheckHandler) Check(ctx context.Context, _ *struct{}) (*CheckOutput, error) {
	result, err := h.cycler.RunCycle(ctx, domain.TriggerManual)
	if err != nil {
		return nil, huma.Error500InternalServerError("check failed: " + err.Error())
	}

	resp := &CheckOutput{}
	resp.Body.Success = true
	resp.Body.Message = Summary(len(result.Offers))
	if len(result.Offers) > 0 {
		resp.Body.Games = result.Offers
	}
	return resp, nil
}

// Summary renders the check message for n new offers.
func Summary(n int) string {
	if n == 0 {
		return "no new free games"
	}
	return fmt.Sprintf("found %d new free game(s)", n)
}

// RegisterCheckRoutes registers the check endpoint with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "run-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/check",
		Summary:     "Run a check now",
		Description: "Fetches the current free games, announces the ones not seen " +
			"before and records them. Waits for any running check to finish first.",
		Tags:   []string{"check"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Check)
}
