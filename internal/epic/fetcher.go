package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/donaldgifford/free-games-notifier/internal/metrics"
	"github.com/donaldgifford/free-games-notifier/internal/tracing"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

const (
	defaultCatalogURL   = "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"
	defaultStoreBaseURL = "https://store.epicgames.com"
	defaultLocale       = "en-US"
	defaultCountry      = "US"
	userAgent           = "free-games-notifier/1.0"

	maxBodyBytes = 5 << 20
)

// Client implements CatalogClient against the freeGamesPromotions endpoint.
type Client struct {
	catalogURL   string
	storeBaseURL string
	locale       string
	country      string
	client       *http.Client
	log          *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithCatalogURL overrides the promotions endpoint.
func WithCatalogURL(u string) Option {
	return func(c *Client) {
		c.catalogURL = u
	}
}

// WithStoreBaseURL overrides the storefront used to build offer links.
func WithStoreBaseURL(u string) Option {
	return func(c *Client) {
		c.storeBaseURL = u
	}
}

// WithLocale sets the catalog locale, e.g. "en-US".
func WithLocale(l string) Option {
	return func(c *Client) {
		c.locale = l
	}
}

// WithCountry sets the country used for availability filtering.
func WithCountry(cc string) Option {
	return func(c *Client) {
		c.country = cc
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		catalogURL:   defaultCatalogURL,
		storeBaseURL: defaultStoreBaseURL,
		locale:       defaultLocale,
		country:      defaultCountry,
		client:       &http.Client{Timeout: 30 * time.Second},
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCurrentOffers issues one request to the catalog and returns the
// entries that currently have an active promotion, in upstream order.
// All failures wrap ErrFetch.
func (c *Client) FetchCurrentOffers(ctx context.Context) ([]domain.Offer, error) {
	ctx, span := tracing.Tracer().Start(ctx, "epic.FetchCurrentOffers")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	elements, err := c.fetchElements(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	offers := ToOffers(elements, c.storeBaseURL, c.locale)
	span.SetAttributes(
		attribute.Int("catalog.elements", len(elements)),
		attribute.Int("catalog.offers", len(offers)),
	)
	c.log.Debug("catalog fetched", "elements", len(elements), "offers", len(offers))

	return offers, nil
}

func (c *Client) fetchElements(ctx context.Context) ([]CatalogElement, error) {
	u, err := c.buildURL()
	if err != nil {
		return nil, fmt.Errorf("%w: building request URL: %w", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating HTTP request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: catalog returned status %d: %s",
			ErrFetch, resp.StatusCode, truncate(string(body), 256))
	}

	var payload promotionsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: parsing catalog response: %w", ErrFetch, err)
	}
	if payload.Data == nil || payload.Data.Catalog == nil {
		return nil, fmt.Errorf("%w: parsing catalog response: missing data.Catalog", ErrFetch)
	}

	return payload.Data.Catalog.SearchStore.Elements, nil
}

func (c *Client) buildURL() (string, error) {
	u, err := url.Parse(c.catalogURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("locale", c.locale)
	q.Set("country", c.country)
	q.Set("allowCountries", c.country)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ CatalogClient = (*Client)(nil)
