package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	yt "google.golang.org/api/youtube/v3"

	"trendforge/internal/logging"
	"trendforge/internal/model"
)

// ErrPublishInPast is returned when a calendar slot has already passed.
var ErrPublishInPast = errors.New("youtube: publish time is in the past")

// Metadata describes the uploaded video. Title defaults to the entry topic.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

// Uploader schedules private uploads that go public at the calendar slot.
type Uploader struct {
	svc        *yt.Service
	CategoryID string
	Notify     bool
	Location   *time.Location
	Now        func() time.Time
}

func NewUploader(svc *yt.Service, categoryID string, notify bool, loc *time.Location) *Uploader {
	return &Uploader{svc: svc, CategoryID: categoryID, Notify: notify, Location: loc, Now: time.Now}
}

// PublishTime resolves the entry's slot in loc and returns it in UTC.
func PublishTime(e model.CalendarEntry, loc *time.Location) (time.Time, error) {
	t, err := e.At(loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// BuildVideo assembles the insert payload for a scheduled upload.
func BuildVideo(e model.CalendarEntry, meta Metadata, categoryID string, publishAt time.Time) *yt.Video {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = e.Topic
	}
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100])
	}
	return &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  categoryID,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus: "private", // must be private to schedule
			PublishAt:     publishAt.UTC().Format(time.RFC3339),
		},
	}
}

// Schedule uploads videoFile for the calendar entry and returns the video id.
func (u *Uploader) Schedule(ctx context.Context, e model.CalendarEntry, videoFile string, meta Metadata) (string, error) {
	publishAt, err := PublishTime(e, u.Location)
	if err != nil {
		return "", err
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	if !publishAt.After(now()) {
		return "", fmt.Errorf("%w: %s", ErrPublishInPast, publishAt.Format(time.RFC3339))
	}
	f, err := os.Open(videoFile)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	video := BuildVideo(e, meta, u.CategoryID, publishAt)
	uploaded, err := u.svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(u.Notify).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}
	logging.Info("upload_scheduled", map[string]any{
		"channel":    e.ChannelID,
		"video_id":   uploaded.Id,
		"publish_at": video.Status.PublishAt,
	})
	return uploaded.Id, nil
}
