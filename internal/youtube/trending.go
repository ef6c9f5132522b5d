package youtube

import (
	"context"
	"fmt"
	"math"
	"time"

	yt "google.golang.org/api/youtube/v3"

	"trendforge/internal/model"
)

// Categories maps niches to platform video category ids.
var Categories = map[model.Niche]string{
	model.NicheTechnology:    "28",
	model.NicheEducationKids: "27",
	model.NicheLifestyle:     "26",
	model.NicheGaming:        "20",
	model.NicheHealth:        "26",
	model.NicheMotivation:    "22",
}

// TrendingProvider reads the most-popular chart for the niche's category.
type TrendingProvider struct {
	svc        *yt.Service
	Region     string
	MaxResults int64
}

func NewTrendingProvider(svc *yt.Service, region string, maxResults int64) *TrendingProvider {
	if region == "" {
		region = "US"
	}
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 25
	}
	return &TrendingProvider{svc: svc, Region: region, MaxResults: maxResults}
}

func (p *TrendingProvider) Name() string         { return "youtube-trending" }
func (p *TrendingProvider) Source() model.Source { return model.SourcePlatform }

func (p *TrendingProvider) Signals(ctx context.Context, niche model.Niche, _ time.Time) ([]model.TrendSignal, error) {
	call := p.svc.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(p.Region).
		MaxResults(p.MaxResults)
	if cat, ok := Categories[niche]; ok {
		call = call.VideoCategoryId(cat)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube trending %s: %w", niche, err)
	}
	return videoSignals(resp.Items), nil
}

// videoSignals converts chart items. Engagement rate is (likes+comments)/views in percent.
func videoSignals(items []*yt.Video) []model.TrendSignal {
	out := make([]model.TrendSignal, 0, len(items))
	for _, v := range items {
		if v == nil || v.Snippet == nil || v.Snippet.Title == "" {
			continue
		}
		s := model.TrendSignal{Topic: v.Snippet.Title, Source: model.SourcePlatform}
		if st := v.Statistics; st != nil {
			s.Views = clampInt64(st.ViewCount)
			if st.ViewCount > 0 {
				rate := float64(st.LikeCount+st.CommentCount) / float64(st.ViewCount) * 100
				s.EngagementRate = math.Round(rate*100) / 100
			}
		}
		out = append(out, s)
	}
	return out
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
