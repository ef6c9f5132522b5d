package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trendforge/internal/model"
)

// FileName is the dated export name, e.g. weekly_calendar_20250106.json.
func FileName(now time.Time) string {
	return fmt.Sprintf("weekly_calendar_%s.json", now.Format("20060102"))
}

// WriteCalendarFile writes calendars keyed by channel id into dir and returns the path.
func WriteCalendarFile(dir string, now time.Time, calendars map[string][]model.CalendarEntry) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(calendars, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(now))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// ReadCalendarFile loads a file written by WriteCalendarFile.
func ReadCalendarFile(path string) (map[string][]model.CalendarEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.CalendarEntry)
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("calendar file %s: %w", path, err)
	}
	return out, nil
}
