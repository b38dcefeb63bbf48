// Package server exposes the aggregation pipeline over HTTP: a JSON news
// API, a subscription endpoint and an HTML digest preview.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"github.com/jwulan/newsdigest/internal/digest"
	"github.com/jwulan/newsdigest/internal/filter"
	"github.com/jwulan/newsdigest/internal/news"
	"github.com/jwulan/newsdigest/internal/pipeline"
)

const maxPageSize = 100

var md = goldmark.New()

var previewPage = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Digest Preview</title>
<style>body { font-family: sans-serif; max-width: 800px; margin: 2rem auto; line-height: 1.6; }</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Provider produces the aggregated item list. Satisfied by
// *pipeline.Aggregator.
type Provider interface {
	Aggregate(ctx context.Context) ([]news.Item, pipeline.Stats)
}

// Subscriber registers an email address with the digest audience.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// Server is the web API collaborator consuming the pipeline's output.
type Server struct {
	provider        Provider
	subscriber      Subscriber
	defaultPageSize int
	digestTopN      int
	router          chi.Router
}

// New creates a server. subscriber may be nil when email is not
// configured; the subscribe endpoint then reports unavailability.
func New(provider Provider, subscriber Subscriber, defaultPageSize, digestTopN int) *Server {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if digestTopN <= 0 {
		digestTopN = digest.DefaultTopN
	}

	s := &Server{
		provider:        provider,
		subscriber:      subscriber,
		defaultPageSize: defaultPageSize,
		digestTopN:      digestTopN,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/news", s.handleNews)
	r.Post("/api/subscribe", s.handleSubscribe)
	r.Get("/digest", s.handleDigestPreview)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

type newsResponse struct {
	News    []news.Item `json:"news"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	HasMore bool        `json:"hasMore"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category, err := news.ParseCategory(q.Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid page parameter"})
		return
	}
	if page < 1 {
		page = 1
	}

	limit, err := intParam(q.Get("limit"), s.defaultPageSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
		return
	}
	if limit < 1 {
		limit = s.defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, _ := s.provider.Aggregate(r.Context())
	filtered := filter.Apply(items, category, strings.TrimSpace(q.Get("keyword")))
	p := filter.Paginate(filtered, page, limit)

	if p.Items == nil {
		p.Items = []news.Item{}
	}
	writeJSON(w, http.StatusOK, newsResponse{
		News:    p.Items,
		Total:   p.Total,
		Page:    p.Page,
		HasMore: p.HasMore,
	})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if s.subscriber == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "subscriptions are not configured"})
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid email address"})
		return
	}

	if err := s.subscriber.Subscribe(r.Context(), email); err != nil {
		log.Printf("Subscribe failed for %s: %v", email, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "subscription failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "subscribed"})
}

func (s *Server) handleDigestPreview(w http.ResponseWriter, r *http.Request) {
	items, _ := s.provider.Aggregate(r.Context())
	d := digest.Render(items, s.digestTopN, time.Now())

	var body bytes.Buffer
	if err := md.Convert([]byte(d.Markdown), &body); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewPage.Execute(w, map[string]any{"Body": template.HTML(body.String())}); err != nil { //nolint: gosec
		log.Printf("Error rendering digest preview: %v", err)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port with sane timeouts.
// Aggregation happens per request, so the write timeout leaves room for
// the slowest feed plus rendering.
func Serve(s *Server, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	log.Printf("Server listening on http://%s", addr)
	return httpServer.ListenAndServe()
}
