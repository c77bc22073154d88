package model

import (
	"time"

	"github.com/google/uuid"
)

// History store limits. Entries are lossy snapshots of an Outperformer:
// the description and tag list are truncated before persistence.
const (
	HistoryDescriptionMax = 500
	HistoryTagsMax        = 20
)

// HistoryEntry is the flattened, durable form of an Outperformer. Entries are
// append-only and deduplicated by video ID at the store level.
type HistoryEntry struct {
	VideoID         string    `json:"video_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelName     string    `json:"channel_name"`
	ChannelCategory string    `json:"channel_category"`
	Views           int64     `json:"views"`
	Subscribers     int64     `json:"subscribers"`
	Ratio           float64   `json:"ratio"`
	VelocityScore   float64   `json:"velocity_score"`
	AgeHours        float64   `json:"age_hours"`
	Classification  string    `json:"classification"`
	Patterns        []string  `json:"patterns,omitempty"`
	Themes          []string  `json:"themes,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	IsNoise         bool      `json:"is_noise"`
	NoiseType       string    `json:"noise_type,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	ScanID          uuid.UUID `json:"scan_id"`
	ScannedAt       time.Time `json:"scanned_at"`
	URL             string    `json:"url"`
}

// NewHistoryEntry flattens an Outperformer into its durable form, applying
// the description and tag truncation limits.
func NewHistoryEntry(op *Outperformer, scanID uuid.UUID, scannedAt time.Time) *HistoryEntry {
	desc := op.Video.Description
	if len(desc) > HistoryDescriptionMax {
		desc = desc[:HistoryDescriptionMax]
	}

	tags := op.Video.Tags
	if len(tags) > HistoryTagsMax {
		tags = tags[:HistoryTagsMax]
	}

	return &HistoryEntry{
		VideoID:         op.Video.VideoID,
		Title:           op.Video.Title,
		Description:     desc,
		ChannelName:     op.Channel.Name,
		ChannelCategory: op.Channel.Category,
		Views:           op.Video.Views,
		Subscribers:     op.Channel.Subscribers,
		Ratio:           op.Ratio,
		VelocityScore:   op.VelocityScore,
		AgeHours:        op.AgeHours,
		Classification:  op.Classification,
		Patterns:        op.TitlePatterns,
		Themes:          op.Themes,
		Tags:            tags,
		IsNoise:         op.IsNoise,
		NoiseType:       op.NoiseType,
		Summary:         op.Summary,
		ScanID:          scanID,
		ScannedAt:       scannedAt,
		URL:             op.URL(),
	}
}

// HistorySummary is an aggregate view of the whole history store.
type HistorySummary struct {
	TotalVideos       int            `json:"total_videos"`
	TrendJackers      int            `json:"trend_jackers"`
	AuthorityBuilders int            `json:"authority_builders"`
	Standard          int            `json:"standard"`
	Categories        map[string]int `json:"categories"`
	FirstScanned      time.Time      `json:"first_scanned,omitzero"`
	LastScanned       time.Time      `json:"last_scanned,omitzero"`
}

// TagStat aggregates one pattern or theme tag across the store.
type TagStat struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	AvgVelocity float64 `json:"avg_velocity"`
}

// QuotaInfo reports platform API quota consumption for a single day.
type QuotaInfo struct {
	Date            time.Time `json:"date"`
	QuotaUsed       int       `json:"quota_used"`
	QuotaLimit      int       `json:"quota_limit"`
	QuotaRemaining  int       `json:"quota_remaining"`
	OperationsCount int       `json:"operations_count"`
}

// BatchState is the persisted round-robin cursor over the channel list.
type BatchState struct {
	CurrentBatch int       `json:"current_batch"`
	TotalBatches int       `json:"total_batches"`
	LastRun      time.Time `json:"last_run,omitzero"`
}
