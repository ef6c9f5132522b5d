package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trendforge/internal/logging"
	"trendforge/internal/model"
)

const (
	maxRetries    = 5
	retryInterval = 2 * time.Second
)

// DB is the shared store for multi-instance deployments.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects with retries and applies the schema.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// NewPool parses databaseURL and pings until the server answers.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				logging.Info("database_connected", nil)
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}

		logging.Warn("database_connect_retry", map[string]any{"attempt": attempt, "max": maxRetries, "error": err.Error()})
		if attempt < maxRetries {
			select {
			case <-time.After(retryInterval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

func (d *DB) migrate(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS opportunities (
	  id BIGSERIAL PRIMARY KEY,
	  run_id TEXT NOT NULL,
	  channel_id TEXT NOT NULL,
	  position INTEGER NOT NULL,
	  created_at TIMESTAMPTZ NOT NULL,
	  payload JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_opps_channel ON opportunities(channel_id, created_at);
	CREATE TABLE IF NOT EXISTS calendar_entries (
	  channel_id TEXT NOT NULL,
	  date DATE NOT NULL,
	  time TEXT NOT NULL,
	  topic TEXT NOT NULL,
	  viral_score DOUBLE PRECISION NOT NULL,
	  monetization_potential DOUBLE PRECISION NOT NULL,
	  competition_level DOUBLE PRECISION NOT NULL,
	  estimated_views BIGINT NOT NULL,
	  estimated_revenue DOUBLE PRECISION NOT NULL,
	  PRIMARY KEY (channel_id, date)
	);
	CREATE TABLE IF NOT EXISTS actions (
	  id BIGSERIAL PRIMARY KEY,
	  ts TIMESTAMPTZ NOT NULL,
	  channel_id TEXT NOT NULL,
	  type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(channel_id, type, ts);`)
	return err
}

// SaveOpportunities stores one ranked list under runID.
func (d *DB) SaveOpportunities(ctx context.Context, runID, channelID string, at time.Time, opps []model.Opportunity) error {
	batch := &pgx.Batch{}
	for i, o := range opps {
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO opportunities(run_id, channel_id, position, created_at, payload) VALUES($1,$2,$3,$4,$5)`,
			runID, channelID, i, at, b)
	}
	return d.pool.SendBatch(ctx, batch).Close()
}

// LatestOpportunities returns the most recent run's list in rank order.
func (d *DB) LatestOpportunities(ctx context.Context, channelID string) ([]model.Opportunity, error) {
	query := `
		SELECT payload FROM opportunities
		WHERE channel_id = $1 AND run_id = (
			SELECT run_id FROM opportunities WHERE channel_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1
		)
		ORDER BY position`

	rows, err := d.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Opportunity
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var o model.Opportunity
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveCalendar upserts entries keyed by channel and date.
func (d *DB) SaveCalendar(ctx context.Context, entries []model.CalendarEntry) error {
	query := `
		INSERT INTO calendar_entries (channel_id, date, time, topic, viral_score, monetization_potential,
		                              competition_level, estimated_views, estimated_revenue)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (channel_id, date) DO UPDATE SET
			time = EXCLUDED.time, topic = EXCLUDED.topic, viral_score = EXCLUDED.viral_score,
			monetization_potential = EXCLUDED.monetization_potential,
			competition_level = EXCLUDED.competition_level,
			estimated_views = EXCLUDED.estimated_views, estimated_revenue = EXCLUDED.estimated_revenue`

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		for _, e := range entries {
			if _, err := tx.Exec(ctx, query, e.ChannelID, e.Date, e.Time, e.Topic, e.ViralScore,
				e.MonetizationPotential, e.CompetitionLevel, e.EstimatedViews, e.EstimatedRevenue); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCalendar returns entries in [from, to] by date. Empty bounds are open.
func (d *DB) LoadCalendar(ctx context.Context, channelID, from, to string) ([]model.CalendarEntry, error) {
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	query := `
		SELECT channel_id, to_char(date, 'YYYY-MM-DD'), time, topic, viral_score, monetization_potential,
		       competition_level, estimated_views, estimated_revenue
		FROM calendar_entries
		WHERE channel_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date`

	rows, err := d.pool.Query(ctx, query, channelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CalendarEntry
	for rows.Next() {
		var e model.CalendarEntry
		if err := rows.Scan(&e.ChannelID, &e.Date, &e.Time, &e.Topic, &e.ViralScore, &e.MonetizationPotential,
			&e.CompetitionLevel, &e.EstimatedViews, &e.EstimatedRevenue); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PutAction records an action such as an upload.
func (d *DB) PutAction(ctx context.Context, at time.Time, channelID, typ string) error {
	if typ == "" {
		return errors.New("empty action type")
	}
	_, err := d.pool.Exec(ctx, `INSERT INTO actions (ts, channel_id, type) VALUES ($1, $2, $3)`, at, channelID, typ)
	return err
}

// CountActionsWithin counts actions in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, channelID, typ string) (int, error) {
	var n int
	err := d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM actions WHERE channel_id = $1 AND type = $2 AND ts >= $3 AND ts < $4`,
		channelID, typ, start, end).Scan(&n)
	return n, err
}
