package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/free-games-notifier/api/openapi"
	"github.com/donaldgifford/free-games-notifier/internal/api/handlers"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

type noCycles struct{}

func (noCycles) RunCycle(_ context.Context, trigger domain.Trigger) (domain.CycleResult, error) {
	return domain.CycleResult{Trigger: trigger}, nil
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(noCycles{}))

	js, err := openapi.Marshal(api, "json")
	require.NoError(t, err)
	assert.Contains(t, string(js), `"operationId": "run-check"`)
	assert.Contains(t, string(js), `"/api/v1/check"`)

	ys, err := openapi.Marshal(api, "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(ys, &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/check")

	_, err = openapi.Marshal(api, "toml")
	require.Error(t, err)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	e := echo.New()
	openapi.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", http.NoBody))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `url: "/openapi.json"`)
}
