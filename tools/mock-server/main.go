// Package main implements a mock storefront and Discord webhook for local
// development. It serves the free-games catalog from a JSON fixture and
// records webhook posts so a full check cycle can run without network access.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

const maxWebhookBody = 1 << 20

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "internal/epic/testdata/promotions.json", "path to catalog response fixture")
	catalogStatus := flag.Int("catalog-status", http.StatusOK, "status the catalog endpoint answers with")
	webhookStatus := flag.Int("webhook-status", http.StatusNoContent, "status the webhook endpoint answers with")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "bytes", len(fixture))

	sink := &webhookSink{status: *webhookStatus}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /freeGamesPromotions", catalogHandler(logger, fixture, *catalogStatus))
	mux.HandleFunc("POST /api/webhooks/{id}/{token}", sink.receive(logger))
	mux.HandleFunc("GET /api/webhooks/received", sink.list)
	mux.HandleFunc("DELETE /api/webhooks/received", sink.reset)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock server",
		"addr", addr,
		"catalog_url", fmt.Sprintf("http://localhost:%d/freeGamesPromotions", *port),
		"webhook_url", fmt.Sprintf("http://localhost:%d/api/webhooks/1/mock", *port),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// loadFixture reads the fixture and checks that it is JSON.
func loadFixture(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parsing fixture: %s is not valid JSON", path)
	}
	return data, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func catalogHandler(logger *slog.Logger, fixture json.RawMessage, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			logger.Warn("catalog failing on purpose", "status", status)
			http.Error(w, http.StatusText(status), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(fixture)
		logger.Info("catalog served",
			"locale", r.URL.Query().Get("locale"),
			"country", r.URL.Query().Get("country"),
		)
	}
}

// receivedPost is one webhook delivery as seen by the sink.
type receivedPost struct {
	WebhookID  string          `json:"webhook_id"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

type webhookSink struct {
	status int

	mu    sync.Mutex
	posts []receivedPost
}

func (s *webhookSink) receive(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil || !json.Valid(body) {
			http.Error(w, `{"message": "Cannot send an empty message", "code": 50006}`, http.StatusBadRequest)
			return
		}

		if s.status < 200 || s.status >= 300 {
			logger.Warn("webhook failing on purpose", "status", s.status)
			http.Error(w, `{"message": "mock failure"}`, s.status)
			return
		}

		s.mu.Lock()
		s.posts = append(s.posts, receivedPost{
			WebhookID:  r.PathValue("id"),
			ReceivedAt: time.Now().UTC(),
			Payload:    body,
		})
		count := len(s.posts)
		s.mu.Unlock()

		logger.Info("webhook received", "webhook_id", r.PathValue("id"), "total", count)
		w.WriteHeader(s.status)
	}
}

func (s *webhookSink) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	posts := make([]receivedPost, len(s.posts))
	copy(posts, s.posts)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(posts)
}

func (s *webhookSink) reset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.posts = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
