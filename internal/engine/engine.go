// Package engine runs the fetch, filter, notify and persist cycle and the
// cron scheduler that drives it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/free-games-notifier/internal/epic"
	"github.com/donaldgifford/free-games-notifier/internal/metrics"
	"github.com/donaldgifford/free-games-notifier/internal/notify"
	"github.com/donaldgifford/free-games-notifier/internal/store"
	"github.com/donaldgifford/free-games-notifier/internal/tracing"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// Cycle result labels.
const (
	resultSuccess    = "success"
	resultFetchError = "fetch_error"
	resultStoreError = "store_error"
	resultCanceled   = "canceled"
)

// Engine orchestrates a single check cycle. At most one cycle runs at a
// time; later callers wait for the slot.
type Engine struct {
	store    store.IDStore
	catalog  epic.CatalogClient
	notifier notify.Notifier
	log      *slog.Logger

	atLeastOnce bool
	slot        chan struct{}
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.IDStore,
	c epic.CatalogClient,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:    s,
		catalog:  c,
		notifier: n,
		log:      slog.Default(),
		slot:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithAtLeastOnce leaves the id of an offer whose notification failed
// unrecorded, so the next cycle offers it again.
func WithAtLeastOnce(enabled bool) EngineOption {
	return func(e *Engine) {
		e.atLeastOnce = enabled
	}
}

// RunCycle fetches the current offers, notifies the ones not yet recorded
// and persists the updated identifier set. The returned result's Offers
// field holds the new offers in fetch order.
//
// A catalog failure ends the cycle with an empty delta and a nil error.
// Store failures are returned. Once the stored ids are loaded the cycle no
// longer observes cancellation of ctx: every delivered notification is
// persisted.
func (eng *Engine) RunCycle(ctx context.Context, trigger domain.Trigger) (result domain.CycleResult, err error) {
	result = domain.CycleResult{Trigger: trigger, Offers: []domain.Offer{}}

	select {
	case eng.slot <- struct{}{}:
	case <-ctx.Done():
		metrics.CyclesTotal.WithLabelValues(string(trigger), resultCanceled).Inc()
		return result, ctx.Err()
	}
	defer func() { <-eng.slot }()

	ctx, span := tracing.Tracer().Start(ctx, "engine.RunCycle")
	defer span.End()
	span.SetAttributes(attribute.String("cycle.trigger", string(trigger)))

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		metrics.CycleDuration.Observe(result.Duration.Seconds())
	}()

	log := eng.log.With("trigger", string(trigger))
	log.Info("check cycle starting")

	offers, err := eng.catalog.FetchCurrentOffers(ctx)
	if err != nil {
		log.Error("fetching free games failed", "error", err)
		metrics.FetchErrorsTotal.Inc()
		metrics.CyclesTotal.WithLabelValues(string(trigger), resultFetchError).Inc()
		span.RecordError(err)
		return result, nil
	}
	result.Fetched = len(offers)
	metrics.OffersFetched.Set(float64(len(offers)))

	known, err := eng.store.Load(ctx)
	if err != nil {
		return result, eng.storeFailure(span, trigger, fmt.Errorf("loading notified ids: %w", err))
	}

	fresh := eng.filterNew(offers, known)
	result.Known = len(offers) - len(fresh)

	// Bounded by the notifier and store timeouts, not by the caller.
	ctx = context.WithoutCancel(ctx)

	for i := range fresh {
		offer := &fresh[i]
		result.Offers = append(result.Offers, *offer)

		if err := eng.notifier.Notify(ctx, *offer); err != nil {
			result.NotifyFailures++
			metrics.NotificationFailuresTotal.Inc()
			log.Error("sending notification failed",
				"offer_id", offer.ID,
				"title", offer.Title,
				"error", err,
			)
			if eng.atLeastOnce {
				continue
			}
		} else {
			metrics.NotificationsSentTotal.Inc()
			log.Info("notification sent", "offer_id", offer.ID, "title", offer.Title)
		}

		known.Add(offer.ID)
	}

	if err := eng.store.Save(ctx, known); err != nil {
		return result, eng.storeFailure(span, trigger, fmt.Errorf("saving notified ids: %w", err))
	}

	metrics.NewOffersTotal.Add(float64(len(result.Offers)))
	metrics.KnownIDs.Set(float64(known.Len()))
	metrics.LastSuccessTimestamp.SetToCurrentTime()
	metrics.CyclesTotal.WithLabelValues(string(trigger), resultSuccess).Inc()

	span.SetAttributes(
		attribute.Int("cycle.fetched", result.Fetched),
		attribute.Int("cycle.new", len(result.Offers)),
	)
	log.Info("check cycle complete",
		"fetched", result.Fetched,
		"new", len(result.Offers),
		"notify_failures", result.NotifyFailures,
		"known_ids", known.Len(),
	)

	return result, nil
}

// filterNew returns offers whose ids are absent from known, keeping the
// first occurrence of an id repeated within one fetch.
func (*Engine) filterNew(offers []domain.Offer, known store.IDSet) []domain.Offer {
	seen := make(map[string]struct{}, len(offers))
	fresh := make([]domain.Offer, 0, len(offers))
	for i := range offers {
		id := offers[i].ID
		if known.Has(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, offers[i])
	}
	return fresh
}

func (eng *Engine) storeFailure(span trace.Span, trigger domain.Trigger, err error) error {
	result := resultStoreError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result = resultCanceled
	}
	metrics.CyclesTotal.WithLabelValues(string(trigger), result).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	eng.log.Error("check cycle aborted", "trigger", string(trigger), "error", err)
	return err
}
