package cmd

import (
	"log/slog"
	"net/http"

	"github.com/donaldgifford/free-games-notifier/internal/config"
	"github.com/donaldgifford/free-games-notifier/internal/engine"
	"github.com/donaldgifford/free-games-notifier/internal/epic"
	"github.com/donaldgifford/free-games-notifier/internal/notify"
	"github.com/donaldgifford/free-games-notifier/internal/store"
)

// app holds the wired components shared by serve and check.
type app struct {
	store    *store.FileStore
	catalog  *epic.Client
	notifier notify.Notifier
	engine   *engine.Engine
}

func newCatalogClient(cfg *config.Config, log *slog.Logger) *epic.Client {
	return epic.NewClient(
		epic.WithCatalogURL(cfg.Catalog.URL),
		epic.WithStoreBaseURL(cfg.Catalog.StoreBaseURL),
		epic.WithLocale(cfg.Catalog.Locale),
		epic.WithCountry(cfg.Catalog.Country),
		epic.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		epic.WithLogger(log.With("component", "catalog")),
	)
}

func newNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	d := cfg.Notifications.Discord
	if !d.Enabled() {
		log.Warn("no Discord webhook configured, notifications will be discarded")
		return notify.NewNoOpNotifier(log.With("component", "notifier"))
	}
	return notify.NewDiscordNotifier(d.WebhookURL,
		notify.WithUsername(d.Username),
		notify.WithAvatarURL(d.AvatarURL),
		notify.WithLocation(cfg.Notifications.DisplayLocation()),
		notify.WithRateLimit(d.RatePerSecond, d.Burst),
		notify.WithHTTPClient(&http.Client{Timeout: d.Timeout}),
	)
}

func newApp(cfg *config.Config, log *slog.Logger) *app {
	a := &app{
		store:    store.NewFileStore(cfg.State.Path),
		catalog:  newCatalogClient(cfg, log),
		notifier: newNotifier(cfg, log),
	}
	a.engine = engine.NewEngine(a.store, a.catalog, a.notifier,
		engine.WithLogger(log.With("component", "engine")),
		engine.WithAtLeastOnce(cfg.Notifications.AtLeastOnce),
	)
	return a
}
