package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/feeds"
	deliveryDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	sloghttp "github.com/samber/slog-http"
)

const defaultFeedLimit = 50

// Relay is the read-only view of the relay engine served over HTTP.
type Relay interface {
	Pairings() []pairingDomain.Pairing
	Lookup(ctx context.Context, sourceID string) (*deliveryDomain.DeliveryRecord, bool)
	Deliveries(ctx context.Context) (int, error)
}

// FeedSource renders the activity feed.
type FeedSource interface {
	GenerateFeed(channelID, baseURL string, limit int) (*feeds.Feed, error)
}

// Server exposes health, pairings, delivery lookups and the activity feed
type Server struct {
	port   string
	relay  Relay
	feed   FeedSource
	logger *slog.Logger

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// New creates a new HTTP server
func New(port string, relay Relay, feed FeedSource) *Server {
	return &Server{
		port:   port,
		relay:  relay,
		feed:   feed,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routed handler with logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /pairings", s.handlePairings)
	mux.HandleFunc("GET /deliveries/{sourceID}", s.handleDelivery)
	mux.HandleFunc("GET /feed", s.handleFeed)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start serves until Shutdown is called. An empty port disables the server.
func (s *Server) Start() error {
	if s.port == "" {
		s.logger.Info("HTTP server disabled")
		return nil
	}

	addr := fmt.Sprintf(":%s", s.port)
	s.logger.Info("HTTP server starting", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.server = server
	s.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully. A Start after Shutdown returns
// immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deliveries, err := s.relay.Deliveries(r.Context())
	if err != nil {
		s.logger.Error("Error counting delivery records", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"error":  "delivery store unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"pairings":   len(s.relay.Pairings()),
		"deliveries": deliveries,
	})
}

func (s *Server) handlePairings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.relay.Pairings())
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("sourceID")

	record, ok := s.relay.Lookup(r.Context(), sourceID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "delivery record not found"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel")

	limit := defaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = n
	}

	// Get base URL from request
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feed.GenerateFeed(channelID, baseURL, limit)
	if err != nil {
		s.logger.Error("Error generating feed", "channel_id", channelID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	var body, contentType string
	if r.URL.Query().Get("format") == "atom" {
		body, err = feed.ToAtom()
		contentType = "application/atom+xml; charset=utf-8"
	} else {
		body, err = feed.ToRss()
		contentType = "application/rss+xml; charset=utf-8"
	}
	if err != nil {
		s.logger.Error("Error rendering feed", "error", err)
		http.Error(w, "Failed to render feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Discord → Telegram relay</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        code { background: #e8e8e8; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Discord → Telegram relay</h1>
    <div class="info">
        <p>Configured pairings: <code>/pairings</code></p>
        <p>Telegram messages of a Discord message: <code>/deliveries/{discordMessageID}</code></p>
        <p>Relay activity feed: <code>/feed</code>, <code>/feed?channel={discordChannelID}</code>, <code>/feed?format=atom</code></p>
    </div>
    <p><a href="/health">Health Check</a></p>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
