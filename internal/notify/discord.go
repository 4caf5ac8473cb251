package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/donaldgifford/free-games-notifier/internal/metrics"
	"github.com/donaldgifford/free-games-notifier/internal/tracing"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

const (
	colorEpic = 0x0078F2

	defaultUsername = "Epic Free Games"
	windowLayout    = "2006-01-02 15:04 MST"

	// Discord embed limits.
	maxTitleLen       = 256
	maxDescriptionLen = 4096
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	avatarURL  string
	loc        *time.Location
	limiter    *rate.Limiter
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		username:   defaultUsername,
		loc:        time.UTC,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// WithUsername sets the display name the webhook posts as.
func WithUsername(name string) DiscordOption {
	return func(d *DiscordNotifier) {
		d.username = name
	}
}

// WithAvatarURL sets the webhook avatar.
func WithAvatarURL(u string) DiscordOption {
	return func(d *DiscordNotifier) {
		d.avatarURL = u
	}
}

// WithLocation sets the zone the promotion window is rendered in.
func WithLocation(loc *time.Location) DiscordOption {
	return func(d *DiscordNotifier) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithRateLimit paces sends to perSecond with the given burst. A
// non-positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) DiscordOption {
	return func(d *DiscordNotifier) {
		if perSecond <= 0 {
			d.limiter = nil
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// Notify posts one embed for offer. Failures wrap ErrNotify.
func (d *DiscordNotifier) Notify(ctx context.Context, offer domain.Offer) error {
	ctx, span := tracing.Tracer().Start(ctx, "notify.Discord")
	defer span.End()
	span.SetAttributes(attribute.String("offer.id", offer.ID))

	if err := d.wait(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	payload := discordWebhookPayload{
		Username:  d.username,
		AvatarURL: d.avatarURL,
		Embeds:    []discordEmbed{d.buildEmbed(&offer)},
	}

	if err := d.post(ctx, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	return nil
}

func (d *DiscordNotifier) wait(ctx context.Context) error {
	if d.limiter == nil {
		return nil
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: waiting for send slot: %w", ErrNotify, err)
	}
	return nil
}

func (d *DiscordNotifier) buildEmbed(offer *domain.Offer) discordEmbed {
	embed := discordEmbed{
		Title:       truncateRunes(offer.Title, maxTitleLen),
		URL:         offer.URL,
		Color:       colorEpic,
		Description: truncateRunes(offer.Description, maxDescriptionLen),
		Fields: []discordEmbedField{
			{Name: "Starts", Value: d.formatTime(offer.StartDate), Inline: true},
			{Name: "Ends", Value: d.formatTime(offer.EndDate), Inline: true},
		},
	}

	if offer.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: offer.ImageURL}
	}

	return embed
}

func (d *DiscordNotifier) formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.In(d.loc).Format(windowLayout)
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var (
	_ Notifier = (*DiscordNotifier)(nil)
	_ Notifier = (*NoOpNotifier)(nil)
)
