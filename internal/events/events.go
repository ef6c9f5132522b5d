// Package events publishes plan results for downstream upload schedulers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"trendforge/internal/logging"
	"trendforge/internal/model"
)

// CalendarEvent is published after a channel's calendar is stored.
type CalendarEvent struct {
	RunID            string                `json:"run_id"`
	ChannelID        string                `json:"channel_id"`
	GeneratedAt      time.Time             `json:"generated_at"`
	ProjectedRevenue float64               `json:"projected_revenue"`
	Entries          []model.CalendarEntry `json:"entries"`
}

// Publisher delivers calendar events.
type Publisher interface {
	PublishCalendar(ctx context.Context, ev CalendarEvent) error
	Close()
}

// Subject is "<prefix>.calendar.<channel>".
func Subject(prefix, channelID string) string {
	if prefix == "" {
		prefix = "trendforge"
	}
	return fmt.Sprintf("%s.calendar.%s", prefix, channelID)
}

type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes on core NATS subjects.
type NATSPublisher struct {
	nc     conn
	prefix string
}

// Connect dials url with reconnect handling.
func Connect(url, prefix string) (*NATSPublisher, error) {
	options := []nats.Option{
		nats.Name("trendforge"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("nats_disconnected", map[string]any{"error": fmt.Sprint(err)})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("nats_reconnected", map[string]any{"url": nc.ConnectedUrl()})
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.Info("nats_closed", nil)
		}),
	}

	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) PublishCalendar(ctx context.Context, ev CalendarEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(p.prefix, ev.ChannelID), b); err != nil {
		return fmt.Errorf("publish calendar %s: %w", ev.ChannelID, err)
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() { p.nc.Close() }

// Nop drops every event. Used when no NATS url is configured.
type Nop struct{}

func (Nop) PublishCalendar(context.Context, CalendarEvent) error { return nil }
func (Nop) Close()                                               {}
