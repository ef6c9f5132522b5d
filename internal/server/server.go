package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trendforge/internal/cache"
	"trendforge/internal/config"
	"trendforge/internal/logging"
	"trendforge/internal/model"
	"trendforge/internal/planner"
	"trendforge/internal/schedule"
	"trendforge/internal/store"
)

// MaxDays bounds the calendar endpoint.
const MaxDays = 90

// Server represents the HTTP API.
type Server struct {
	server  *http.Server
	router  *chi.Mux
	planner *planner.Planner
	store   store.Store
	cache   *cache.Cache
}

// NewServer wires routes over the planner. Store and cache may be nil.
func NewServer(cfg config.ServerConfig, p *planner.Planner, st store.Store, c *cache.Cache) *Server {
	s := &Server{planner: p, store: st, cache: c}
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/channels", s.listChannels)
			r.Route("/channels/{id}", func(r chi.Router) {
				r.Get("/opportunities", s.getOpportunities)
				r.Get("/calendar", s.getCalendar)
			})
		})
	})
	router.Handle("/metrics", promhttp.Handler())

	s.router = router
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	out := s.planner.Channels
	if out == nil {
		out = []model.Channel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": out})
}

func (s *Server) channel(w http.ResponseWriter, r *http.Request) (model.Channel, bool) {
	id := chi.URLParam(r, "id")
	ch, ok := s.planner.Channel(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown channel "+strconv.Quote(id))
	}
	return ch, ok
}

func (s *Server) getOpportunities(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.channel(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	key := cache.OpportunitiesKey(ch.ID)
	if b, err := s.cache.Get(ctx, key); err == nil && b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(b)
		return
	}

	var opps []model.Opportunity
	if s.store != nil {
		stored, err := s.store.LatestOpportunities(ctx, ch.ID)
		if err != nil {
			logging.Error("load_opportunities_failed", map[string]any{"channel": ch.ID, "error": err.Error()})
		}
		opps = stored
	}
	if len(opps) == 0 {
		live, err := s.planner.Opportunities(ctx, ch)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		opps = live
	}
	if opps == nil {
		opps = []model.Opportunity{}
	}
	body := map[string]any{"channel_id": ch.ID, "opportunities": opps}
	if err := s.cache.SetJSON(ctx, key, body); err != nil {
		logging.Warn("cache_set_failed", map[string]any{"key": key, "error": err.Error()})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.channel(w, r)
	if !ok {
		return
	}
	days := s.planner.Days
	if days == 0 {
		days = 7
	}
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxDays {
			writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 90")
			return
		}
		days = n
	}
	plan, err := s.planner.PlanChannel(r.Context(), ch, days)
	if err != nil {
		if errors.Is(err, schedule.ErrNoOpportunities) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channel_id": ch.ID,
		"days":       days,
		"entries":    plan.Calendar,
		"projection": plan.Projection,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request as one structured line.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"bytes_sent":  ww.BytesWritten(),
			"request_id":  middleware.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			logging.Error("request", fields)
		case status >= 400:
			logging.Warn("request", fields)
		default:
			logging.Info("request", fields)
		}
	})
}
