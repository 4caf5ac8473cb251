package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/free-games-notifier/internal/epic"
	"github.com/donaldgifford/free-games-notifier/internal/notify"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

const twoEntryCatalog = `{"data":{"Catalog":{"searchStore":{"elements":[
	{"id":"B0","title":"Still Paid","productSlug":"still-paid","promotions":{"promotionalOffers":[]}},
	{"id":"A1","title":"Hollow Orbit","productSlug":"hollow-orbit","promotions":{"promotionalOffers":[
		{"promotionalOffers":[{"startDate":"2024-01-01T00:00:00Z","endDate":"2024-01-08T00:00:00Z"}]}
	]}}
]}}}}`

type webhookRecorder struct {
	mu     sync.Mutex
	titles []string
}

func (w *webhookRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	var payload struct {
		Embeds []struct {
			Title string `json:"title"`
		} `json:"embeds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	w.mu.Lock()
	for _, e := range payload.Embeds {
		w.titles = append(w.titles, e.Title)
	}
	w.mu.Unlock()

	rw.WriteHeader(http.StatusNoContent)
}

func (w *webhookRecorder) received() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.titles...)
}

func TestRunCycle_CatalogToWebhook(t *testing.T) {
	t.Parallel()

	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoEntryCatalog))
	}))
	t.Cleanup(catalog.Close)

	hook := &webhookRecorder{}
	webhook := httptest.NewServer(hook)
	t.Cleanup(webhook.Close)

	fs := newFileStore(t)
	eng := NewEngine(
		fs,
		epic.NewClient(
			epic.WithCatalogURL(catalog.URL),
			epic.WithLogger(quietLogger()),
		),
		notify.NewDiscordNotifier(webhook.URL, notify.WithRateLimit(0, 0)),
		WithLogger(quietLogger()),
	)

	res, err := eng.RunCycle(context.Background(), domain.TriggerManual)
	require.NoError(t, err)

	require.Len(t, res.Offers, 1)
	got := res.Offers[0]
	assert.Equal(t, "A1", got.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), got.EndDate)
	assert.Equal(t, 1, res.Fetched)

	assert.Equal(t, []string{"Hollow Orbit"}, hook.received())
	assert.Equal(t, []string{"A1"}, storedIDs(t, fs))

	res, err = eng.RunCycle(context.Background(), domain.TriggerManual)
	require.NoError(t, err)
	assert.Empty(t, res.Offers)
	assert.Len(t, hook.received(), 1, "known offer is not posted again")
}
