// Package model defines the domain entities shared across the scanner,
// history store, trend layer, and delivery layer.
package model

import (
	"time"
)

// Classification buckets for outperforming videos.
const (
	ClassTrendJacker      = "trend_jacker"
	ClassAuthorityBuilder = "authority_builder"
	ClassStandard         = "standard"
)

// Noise types attached to outperformers whose performance is attributable to
// an external event rather than packaging. An empty string means "not noise".
const (
	NoiseEventRecap    = "event_recap"
	NoiseLiveStream    = "live_stream"
	NoisePoliticalNews = "political_news"
	NoiseNotRelevant   = "not_relevant"
)

// ChannelRecord is one monitored channel. Subscriber count and display name
// are refreshed from the platform at the start of each scan run; category is
// assigned at import time.
type ChannelRecord struct {
	ChannelID   string `json:"channel_id"`
	Name        string `json:"name"`
	Subscribers int64  `json:"subscribers"`
	Category    string `json:"category"`
	About       string `json:"about,omitempty"`
}

// VideoRecord is one candidate video, fetched fresh every scan and never
// mutated after construction.
type VideoRecord struct {
	VideoID         string    `json:"video_id"`
	ChannelID       string    `json:"channel_id"`
	ChannelName     string    `json:"channel_name"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	Comments        int64     `json:"comments"`
	PublishedAt     time.Time `json:"published_at"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds int       `json:"duration_seconds"`
	Tags            []string  `json:"tags,omitempty"`
}

// Outperformer is a (video, channel) pair that passed the outperformance test
// at a specific point in time. Immutable within a scan; the same video may be
// re-detected on a later scan with recomputed ratio and velocity.
type Outperformer struct {
	Video          VideoRecord   `json:"video"`
	Channel        ChannelRecord `json:"channel"`
	Ratio          float64       `json:"ratio"`
	VelocityScore  float64       `json:"velocity_score"`
	AgeHours       float64       `json:"age_hours"`
	Classification string        `json:"classification"`
	TitlePatterns  []string      `json:"title_patterns,omitempty"`
	Themes         []string      `json:"themes,omitempty"`
	IsNoise        bool          `json:"is_noise"`
	NoiseType      string        `json:"noise_type,omitempty"`
	Summary        string        `json:"summary,omitempty"`
}

// URL returns the watch URL for the underlying video.
func (o *Outperformer) URL() string {
	return "https://youtube.com/watch?v=" + o.Video.VideoID
}
