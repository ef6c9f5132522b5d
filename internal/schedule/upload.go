package schedule

import (
	"math/rand/v2"
	"time"

	"trendforge/internal/model"
)

// UploadWindow is the audience's best days and hours for a publish slot.
type UploadWindow struct {
	PeakDays  []time.Weekday
	PeakHours []int
}

// UploadWindows returns the peak window for an age group.
func UploadWindows(g model.AgeGroup) UploadWindow {
	switch g.Normalize() {
	case model.AgeKids:
		return UploadWindow{PeakDays: []time.Weekday{time.Saturday, time.Sunday}, PeakHours: []int{9, 14, 16}}
	case model.AgeTeens:
		return UploadWindow{PeakDays: []time.Weekday{time.Friday, time.Saturday, time.Sunday}, PeakHours: []int{15, 19, 21}}
	case model.AgeAdults:
		return UploadWindow{PeakDays: []time.Weekday{time.Tuesday, time.Thursday, time.Sunday}, PeakHours: []int{11, 17, 19}}
	case model.AgeMatureAdults:
		return UploadWindow{PeakDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday}, PeakHours: []int{10, 16, 18}}
	case model.AgeAllAdults:
		return UploadWindow{PeakDays: []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}, PeakHours: []int{12, 18, 20}}
	default:
		return UploadWindow{PeakDays: []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}, PeakHours: []int{12, 18, 20}}
	}
}

func (w UploadWindow) isPeak(d time.Weekday) bool {
	for _, p := range w.PeakDays {
		if p == d {
			return true
		}
	}
	return false
}

// NextUploadTime spreads the index-th upload index days out, then moves
// forward to the next peak day at a random peak hour.
func NextUploadTime(w UploadWindow, now time.Time, index int, rng IntN) time.Time {
	target := now.AddDate(0, 0, index)
	for i := 0; i < 7; i++ { // a week always contains a peak day
		if len(w.PeakDays) == 0 || w.isPeak(target.Weekday()) {
			break
		}
		target = target.AddDate(0, 0, 1)
	}
	hour := target.Hour()
	if len(w.PeakHours) > 0 {
		if rng == nil {
			hour = w.PeakHours[rand.IntN(len(w.PeakHours))]
		} else {
			hour = w.PeakHours[rng.IntN(len(w.PeakHours))]
		}
	}
	return time.Date(target.Year(), target.Month(), target.Day(), hour, 0, 0, 0, target.Location())
}

// ScheduleUploads returns n publish times for a channel.
func ScheduleUploads(ch model.Channel, n int, now time.Time, rng IntN) []time.Time {
	w := UploadWindows(ch.AgeGroup)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NextUploadTime(w, now, i, rng))
	}
	return out
}
