// Package store persists ranked opportunities, calendars and upload actions.
package store

import (
	"context"
	"fmt"
	"time"

	"trendforge/internal/config"
	"trendforge/internal/model"
	"trendforge/internal/store/postgres"
	"trendforge/internal/store/sqlite"
)

// Store is the persistence collaborator of the planner and the HTTP API.
type Store interface {
	SaveOpportunities(ctx context.Context, runID, channelID string, at time.Time, opps []model.Opportunity) error
	LatestOpportunities(ctx context.Context, channelID string) ([]model.Opportunity, error)
	// SaveCalendar upserts entries by channel and date.
	SaveCalendar(ctx context.Context, entries []model.CalendarEntry) error
	// LoadCalendar returns entries with from <= date <= to, ordered by date.
	LoadCalendar(ctx context.Context, channelID, from, to string) ([]model.CalendarEntry, error)
	PutAction(ctx context.Context, at time.Time, channelID, typ string) error
	CountActionsWithin(ctx context.Context, start, end time.Time, channelID, typ string) (int, error)
	Close() error
}

var (
	_ Store = (*sqlite.DB)(nil)
	_ Store = (*postgres.DB)(nil)
)

// Open connects the configured backend. An empty driver means sqlite.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.DBPath
		if path == "" {
			path = "./trendforge.db"
		}
		return sqlite.Open(path)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("store: postgres driver needs storage.databaseUrl or DATABASE_URL")
		}
		return postgres.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
