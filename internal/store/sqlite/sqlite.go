package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"trendforge/internal/model"
)

// DB is the default single-file store.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS opportunities (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  run_id TEXT NOT NULL,
	  channel_id TEXT NOT NULL,
	  position INTEGER NOT NULL,
	  created_at INTEGER NOT NULL,
	  payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_opps_channel ON opportunities(channel_id, created_at);
	CREATE TABLE IF NOT EXISTS calendar_entries (
	  channel_id TEXT NOT NULL,
	  date TEXT NOT NULL,
	  time TEXT NOT NULL,
	  topic TEXT NOT NULL,
	  viral_score REAL NOT NULL,
	  monetization_potential REAL NOT NULL,
	  competition_level REAL NOT NULL,
	  estimated_views INTEGER NOT NULL,
	  estimated_revenue REAL NOT NULL,
	  PRIMARY KEY (channel_id, date)
	);
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  channel_id TEXT NOT NULL,
	  type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(channel_id, type, ts);
	`)
	return err
}

// SaveOpportunities stores one ranked list under runID.
func (d *DB) SaveOpportunities(ctx context.Context, runID, channelID string, at time.Time, opps []model.Opportunity) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for i, o := range opps {
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO opportunities(run_id, channel_id, position, created_at, payload) VALUES(?,?,?,?,?)`,
			runID, channelID, i, at.UnixNano(), string(b)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LatestOpportunities returns the most recent run's list in rank order.
func (d *DB) LatestOpportunities(ctx context.Context, channelID string) ([]model.Opportunity, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT payload FROM opportunities
	WHERE channel_id=? AND run_id=(
	  SELECT run_id FROM opportunities WHERE channel_id=? ORDER BY created_at DESC, id DESC LIMIT 1
	)
	ORDER BY position`, channelID, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Opportunity
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var o model.Opportunity
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveCalendar upserts entries keyed by channel and date.
func (d *DB) SaveCalendar(ctx context.Context, entries []model.CalendarEntry) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO calendar_entries(channel_id, date, time, topic, viral_score, monetization_potential, competition_level, estimated_views, estimated_revenue)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(channel_id, date) DO UPDATE SET
		  time=excluded.time, topic=excluded.topic, viral_score=excluded.viral_score,
		  monetization_potential=excluded.monetization_potential, competition_level=excluded.competition_level,
		  estimated_views=excluded.estimated_views, estimated_revenue=excluded.estimated_revenue`,
			e.ChannelID, e.Date, e.Time, e.Topic, e.ViralScore, e.MonetizationPotential, e.CompetitionLevel, e.EstimatedViews, e.EstimatedRevenue); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadCalendar returns entries in [from, to] by date. Empty bounds are open.
func (d *DB) LoadCalendar(ctx context.Context, channelID, from, to string) ([]model.CalendarEntry, error) {
	if to == "" {
		to = "9999-12-31"
	}
	rows, err := d.sql.QueryContext(ctx, `
	SELECT channel_id, date, time, topic, viral_score, monetization_potential, competition_level, estimated_views, estimated_revenue
	FROM calendar_entries WHERE channel_id=? AND date>=? AND date<=? ORDER BY date`, channelID, from, to)
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
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, channel_id, type) VALUES(?,?,?)`, at.Unix(), channelID, typ)
	return err
}

// CountActionsWithin counts actions in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, channelID, typ string) (int, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE channel_id=? AND type=? AND ts>=? AND ts<?`,
		channelID, typ, start.Unix(), end.Unix())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
