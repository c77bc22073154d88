// Package scanner implements outperformance detection: the filter funnel,
// velocity scoring, classification, and noise annotation.
package scanner

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/analyzer"
	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/metrics"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// Filter drop reasons, used for metrics labels.
const (
	DropAge      = "age_window"
	DropShort    = "short"
	DropMinViews = "min_views"
	DropRatio    = "ratio"
)

// VideoSource provides channel statistics and recent uploads. Satisfied by
// the youtube client; tests substitute a fake.
type VideoSource interface {
	ChannelStats(ctx context.Context, channelID string) (*ChannelStats, error)
	RecentVideos(ctx context.Context, channelID string, limit int64) ([]model.VideoRecord, error)
}

// ChannelStats mirrors the source-side channel data the engine needs.
type ChannelStats struct {
	ChannelID   string
	Title       string
	Subscribers int64
	About       string
}

// ScanResult is the outcome of one pass over a channel list.
type ScanResult struct {
	Outperformers   []*model.Outperformer
	MidPerformers   []*model.Outperformer
	ChannelsScanned int
	ChannelsSkipped int
	VideosChecked   int
}

// Engine runs the detection funnel over channel lists.
type Engine struct {
	cfg    *config.ScannerConfig
	source VideoSource
	log    *zap.Logger
	now    func() time.Time
}

// NewEngine builds an engine. The clock defaults to time.Now.
func NewEngine(cfg *config.ScannerConfig, source VideoSource) *Engine {
	return &Engine{
		cfg:    cfg,
		source: source,
		log:    logger.Named("scanner"),
		now:    time.Now,
	}
}

// WithClock overrides the engine's clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// FindOutperformers scans every channel in the list and returns detected
// outperformers sorted by velocity, plus sports mid-performers sorted by
// ratio. Individual channel failures are logged and skipped; the scan never
// aborts because one channel misbehaved. The only error returned is context
// cancellation.
func (e *Engine) FindOutperformers(ctx context.Context, channels []model.ChannelRecord) (*ScanResult, error) {
	result := &ScanResult{}
	now := e.now()

	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats, err := e.source.ChannelStats(ctx, ch.ChannelID)
		if err != nil {
			e.log.Warn("channel fetch failed, skipping",
				zap.String("channel_id", ch.ChannelID),
				zap.String("name", ch.Name),
				zap.Error(err),
			)
			result.ChannelsSkipped++
			metrics.ChannelsSkipped.Inc()
			continue
		}
		if stats.Subscribers == 0 {
			e.log.Warn("channel has zero or hidden subscribers, skipping",
				zap.String("channel_id", ch.ChannelID),
				zap.String("name", ch.Name),
			)
			result.ChannelsSkipped++
			metrics.ChannelsSkipped.Inc()
			continue
		}

		channel := ch
		channel.Subscribers = stats.Subscribers
		channel.About = stats.About
		if channel.Name == "" {
			channel.Name = stats.Title
		}

		videos, err := e.source.RecentVideos(ctx, ch.ChannelID, e.cfg.VideosPerChannel)
		if err != nil {
			e.log.Warn("video fetch failed, skipping channel",
				zap.String("channel_id", ch.ChannelID),
				zap.Error(err),
			)
			result.ChannelsSkipped++
			metrics.ChannelsSkipped.Inc()
			continue
		}

		result.ChannelsScanned++
		metrics.ChannelsScanned.Inc()

		for i := range videos {
			result.VideosChecked++
			e.evaluate(&videos[i], &channel, now, result)
		}
	}

	sort.SliceStable(result.Outperformers, func(i, j int) bool {
		return result.Outperformers[i].VelocityScore > result.Outperformers[j].VelocityScore
	})
	sort.SliceStable(result.MidPerformers, func(i, j int) bool {
		return result.MidPerformers[i].Ratio > result.MidPerformers[j].Ratio
	})

	return result, nil
}

// evaluate pushes one video through the filter funnel and, if it survives,
// appends it to the appropriate result bucket.
func (e *Engine) evaluate(video *model.VideoRecord, channel *model.ChannelRecord, now time.Time, result *ScanResult) {
	age := VideoAgeHours(video.PublishedAt, now)
	if !e.WithinWindow(age) {
		metrics.VideosDropped.WithLabelValues(DropAge).Inc()
		return
	}
	if IsShort(video, e.cfg.MinVideoDuration) {
		metrics.VideosDropped.WithLabelValues(DropShort).Inc()
		return
	}
	if video.Views < e.cfg.MinViews {
		metrics.VideosDropped.WithLabelValues(DropMinViews).Inc()
		return
	}

	ratio := float64(video.Views) / float64(channel.Subscribers)
	sports := e.cfg.IsSportsCategory(channel.Category)

	threshold := e.cfg.MinRatio
	if sports {
		threshold = e.cfg.MinRatioSports
	}

	switch {
	case ratio >= threshold:
		op := e.buildOutperformer(video, channel, ratio, age)
		e.annotate(op)
		result.Outperformers = append(result.Outperformers, op)
		metrics.OutperformersDetected.WithLabelValues(op.Classification).Inc()

	case sports && ratio >= e.cfg.MinRatioMid:
		op := e.buildOutperformer(video, channel, ratio, age)
		// Mid-performers are context, not signal: classification is pinned
		// and the noise chain does not run.
		op.Classification = model.ClassStandard
		result.MidPerformers = append(result.MidPerformers, op)

	default:
		metrics.VideosDropped.WithLabelValues(DropRatio).Inc()
	}
}

func (e *Engine) buildOutperformer(video *model.VideoRecord, channel *model.ChannelRecord, ratio, age float64) *model.Outperformer {
	velocity := VelocityScore(ratio, age)
	return &model.Outperformer{
		Video:          *video,
		Channel:        *channel,
		Ratio:          ratio,
		VelocityScore:  velocity,
		AgeHours:       age,
		Classification: e.Classify(age, velocity),
		TitlePatterns:  analyzer.AnalyzeTitle(video.Title),
		Themes:         analyzer.ClassifyThemes(video.Title, video.Description, video.Tags),
	}
}

// annotate runs the noise chain in priority order; the first match wins.
// Annotation never changes the classification.
func (e *Engine) annotate(op *model.Outperformer) {
	switch {
	case analyzer.IsEventRecap(op.Video.Title, op.Channel.Category):
		op.IsNoise = true
		op.NoiseType = model.NoiseEventRecap
	case analyzer.IsLiveStream(op.Video.Title):
		op.IsNoise = true
		op.NoiseType = model.NoiseLiveStream
	case analyzer.IsPoliticalNews(op.Video.Title, op.Channel.Category):
		op.IsNoise = true
		op.NoiseType = model.NoisePoliticalNews
	case analyzer.IsNotRelevant(op.Channel.Category, op.Themes):
		op.IsNoise = true
		op.NoiseType = model.NoiseNotRelevant
	}
	if op.IsNoise {
		metrics.NoiseAnnotated.WithLabelValues(op.NoiseType).Inc()
	}
}

// AuthorityAgeHours is the age floor for the authority_builder bucket: a
// week-plus of sustained pull.
const AuthorityAgeHours = 168

// Classify buckets an outperformer by age and velocity. The trend_jacker
// check runs first: a video that somehow satisfies both branches is a
// trend_jacker.
func (e *Engine) Classify(ageHours, velocity float64) string {
	if ageHours <= e.cfg.SignalWindowHours && velocity >= e.cfg.VelocityTrendJacker {
		return model.ClassTrendJacker
	}
	if ageHours >= AuthorityAgeHours && velocity >= e.cfg.VelocityAuthority {
		return model.ClassAuthorityBuilder
	}
	return model.ClassStandard
}

func (e *Engine) WithinWindow(ageHours float64) bool {
	return ageHours >= e.cfg.MinVideoAgeHours && ageHours <= e.cfg.MaxVideoAgeHours
}

// VideoAgeHours returns the elapsed hours between publication and now.
func VideoAgeHours(publishedAt, now time.Time) float64 {
	return now.Sub(publishedAt).Hours()
}

// VelocityScore normalizes the view/subscriber ratio by video age in days.
// Non-positive ages yield zero rather than a division blowup.
func VelocityScore(ratio, ageHours float64) float64 {
	days := ageHours / 24
	if days <= 0 {
		return 0
	}
	return ratio / days
}

// IsShort reports whether a video is a Shorts upload: marked as such in the
// title or tags, or shorter than the minimum duration. A zero duration means
// the API did not report one; those are excluded too.
func IsShort(video *model.VideoRecord, minDuration int) bool {
	if titleMarksShort(video.Title) {
		return true
	}
	for _, tag := range video.Tags {
		if tagMarksShort(tag) {
			return true
		}
	}
	return video.DurationSeconds == 0 || video.DurationSeconds < minDuration
}
