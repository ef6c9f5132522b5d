package quota

import (
	"context"
	"time"
)

const (
	// ActionUpload is the action type recorded for scheduled uploads.
	ActionUpload = "upload"
	// ActionSlot marks a publish slot that already holds an upload. The
	// action time is the slot's publish time, not the upload time.
	ActionSlot = "upload_slot"
)

// Counter is the part of the store the budget needs.
type Counter interface {
	PutAction(ctx context.Context, at time.Time, channelID, typ string) error
	CountActionsWithin(ctx context.Context, start, end time.Time, channelID, typ string) (int, error)
}

// ShouldAllowUpload checks the channel's daily upload budget. The day runs
// midnight to midnight in loc (UTC when nil). maxPerDay <= 0 disables the cap.
func ShouldAllowUpload(ctx context.Context, db Counter, channelID string, maxPerDay int, now time.Time, loc *time.Location) (bool, error) {
	if maxPerDay <= 0 {
		return true, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayCount, err := db.CountActionsWithin(ctx, startDay, startDay.AddDate(0, 0, 1), channelID, ActionUpload)
	if err != nil {
		return false, err
	}
	return dayCount < maxPerDay, nil
}

// RecordUpload logs an upload action.
func RecordUpload(ctx context.Context, db Counter, channelID string, now time.Time) error {
	return db.PutAction(ctx, now, channelID, ActionUpload)
}

// RecordSlot marks the publish slot at as used.
func RecordSlot(ctx context.Context, db Counter, channelID string, at time.Time) error {
	return db.PutAction(ctx, at.Truncate(time.Second), channelID, ActionSlot)
}

// SlotTaken reports whether an upload was already scheduled for the slot at.
func SlotTaken(ctx context.Context, db Counter, channelID string, at time.Time) (bool, error) {
	at = at.Truncate(time.Second)
	n, err := db.CountActionsWithin(ctx, at, at.Add(time.Second), channelID, ActionSlot)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
