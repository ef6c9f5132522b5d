package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trendforge/internal/cache"
	"trendforge/internal/config"
	"trendforge/internal/model"
	"trendforge/internal/planner"
	"trendforge/internal/signals"
	"trendforge/internal/store/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	p := &planner.Planner{
		Channels: []model.Channel{
			{ID: "tech", Niche: model.NicheTechnology, Keywords: []string{"AI"}},
			{ID: "empty", Niche: model.Niche("pets")},
		},
		Providers: []signals.Provider{signals.NewCatalogProvider("platform", model.SourcePlatform, map[model.Niche][]model.TrendSignal{
			model.NicheTechnology: {{Topic: "AI Tools 2025", Views: 1_500_000, GrowthRate: 150}},
		})},
		Days: 7,
		Seed: 1,
		Now:  func() time.Time { return time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC) },
	}
	return NewServer(config.ServerConfig{}, p, db, cache.New("", 0)), db
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/api/health"); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, s, "/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestListChannels(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/channels")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Channels []model.Channel `json:"channels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Channels) != 2 || body.Channels[0].ID != "tech" {
		t.Fatalf("unexpected channels: %+v", body.Channels)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/channels/tech/calendar?days=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Days    int                   `json:"days"`
		Entries []model.CalendarEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Days != 3 || len(body.Entries) != 3 || body.Entries[2].Date != "2025-01-08" {
		t.Fatalf("unexpected calendar: %+v", body)
	}

	for path, want := range map[string]int{
		"/api/v1/channels/tech/calendar?days=0":   http.StatusBadRequest,
		"/api/v1/channels/tech/calendar?days=91":  http.StatusBadRequest,
		"/api/v1/channels/tech/calendar?days=abc": http.StatusBadRequest,
		"/api/v1/channels/nope/calendar":          http.StatusNotFound,
		"/api/v1/channels/empty/calendar":         http.StatusNotFound,
		"/api/v1/channels/tech/calendar":          http.StatusOK,
	} {
		if rec := get(t, s, path); rec.Code != want {
			t.Fatalf("%s: status %d, want %d", path, rec.Code, want)
		}
	}
}

func TestOpportunitiesPreferStoredRun(t *testing.T) {
	s, db := newTestServer(t)
	rec := get(t, s, "/api/v1/channels/tech/opportunities")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "AI Tools 2025") {
		t.Fatalf("live opportunities: %d %s", rec.Code, rec.Body.String())
	}
	stored := []model.Opportunity{{TrendSignal: model.TrendSignal{Topic: "Stored Topic"}, ViralScore: 1}}
	if err := db.SaveOpportunities(t.Context(), "run", "tech", time.Now(), stored); err != nil {
		t.Fatal(err)
	}
	rec = get(t, s, "/api/v1/channels/tech/opportunities")
	if !strings.Contains(rec.Body.String(), "Stored Topic") {
		t.Fatalf("expected stored run, got %s", rec.Body.String())
	}
	if rec := get(t, s, "/api/v1/channels/nope/opportunities"); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}
