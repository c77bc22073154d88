// Package youtube wraps the YouTube Data API v3 for channel and video reads.
package youtube

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// Quota units per list call, per the Data API pricing table.
const listCallCost = 1

// videos.list accepts at most 50 IDs per request.
const videoBatchSize = 50

// ChannelStats is the API-sourced half of a channel record. Name and category
// come from the configured channel list; subscribers and the about text come
// from here.
type ChannelStats struct {
	ChannelID   string
	Title       string
	Subscribers int64
	About       string
}

// Client is a thin wrapper over the Data API service that tracks quota
// consumption and retries transient failures.
type Client struct {
	svc       *yt.Service
	log       *zap.Logger
	quotaUsed atomic.Int64
}

// NewClient builds an API-key authenticated client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		svc: svc,
		log: logger.Named("youtube"),
	}, nil
}

// QuotaUsed returns the quota units consumed by this client so far.
func (c *Client) QuotaUsed() int {
	return int(c.quotaUsed.Load())
}

// ChannelStats fetches subscriber count and the about text for a channel.
// Returns an error when the channel does not exist or is hidden.
func (c *Client) ChannelStats(ctx context.Context, channelID string) (*ChannelStats, error) {
	var resp *yt.ChannelListResponse

	err := c.retry(ctx, func() error {
		var err error
		resp, err = c.svc.Channels.List([]string{"snippet", "statistics"}).
			Id(channelID).
			Context(ctx).
			Do()
		return err
	})
	c.quotaUsed.Add(listCallCost)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	ch := resp.Items[0]
	stats := &ChannelStats{
		ChannelID: channelID,
		Title:     ch.Snippet.Title,
		About:     ch.Snippet.Description,
	}
	if ch.Statistics != nil && !ch.Statistics.HiddenSubscriberCount {
		stats.Subscribers = int64(ch.Statistics.SubscriberCount)
	}
	return stats, nil
}

// RecentVideos returns the channel's most recent uploads, newest first, with
// statistics and duration populated. It reads the uploads playlist rather than
// search.list: one playlist page plus one videos.list batch costs 2 units
// where a search would cost 100.
func (c *Client) RecentVideos(ctx context.Context, channelID string, limit int64) ([]model.VideoRecord, error) {
	playlistID := uploadsPlaylistID(channelID)
	if playlistID == "" {
		return nil, fmt.Errorf("channel id %s has no uploads playlist", channelID)
	}

	var items *yt.PlaylistItemListResponse
	err := c.retry(ctx, func() error {
		var err error
		items, err = c.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(limit).
			Context(ctx).
			Do()
		return err
	})
	c.quotaUsed.Add(listCallCost)
	if err != nil {
		// A brand-new channel has no uploads playlist yet; treat as empty.
		if isNotFound(err) {
			c.log.Debug("uploads playlist missing", zap.String("channel_id", channelID))
			return nil, nil
		}
		return nil, fmt.Errorf("fetch uploads for %s: %w", channelID, err)
	}

	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return c.videosByID(ctx, channelID, ids)
}

func (c *Client) videosByID(ctx context.Context, channelID string, ids []string) ([]model.VideoRecord, error) {
	videos := make([]model.VideoRecord, 0, len(ids))

	for _, batch := range batchIDs(ids, videoBatchSize) {
		var resp *yt.VideoListResponse
		err := c.retry(ctx, func() error {
			var err error
			resp, err = c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
				Id(batch...).
				Context(ctx).
				Do()
			return err
		})
		c.quotaUsed.Add(listCallCost)
		if err != nil {
			return nil, fmt.Errorf("fetch videos for %s: %w", channelID, err)
		}

		for _, v := range resp.Items {
			videos = append(videos, videoRecord(channelID, v))
		}
	}

	return videos, nil
}

func videoRecord(channelID string, v *yt.Video) model.VideoRecord {
	rec := model.VideoRecord{
		VideoID:   v.Id,
		ChannelID: channelID,
	}

	if v.Snippet != nil {
		rec.Title = v.Snippet.Title
		rec.Description = v.Snippet.Description
		rec.ChannelName = v.Snippet.ChannelTitle
		rec.Tags = v.Snippet.Tags
		if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			rec.PublishedAt = t
		}
		if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.High != nil {
			rec.ThumbnailURL = v.Snippet.Thumbnails.High.Url
		}
	}
	if v.Statistics != nil {
		rec.Views = int64(v.Statistics.ViewCount)
		rec.Likes = int64(v.Statistics.LikeCount)
		rec.Comments = int64(v.Statistics.CommentCount)
	}
	if v.ContentDetails != nil {
		rec.DurationSeconds = ParseDuration(v.ContentDetails.Duration)
	}
	return rec
}

// uploadsPlaylistID derives the uploads playlist from a channel ID. Channel
// IDs start with UC; swapping the prefix to UU yields the uploads playlist.
func uploadsPlaylistID(channelID string) string {
	if !strings.HasPrefix(channelID, "UC") {
		return ""
	}
	return "UU" + channelID[2:]
}

func batchIDs(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

// ParseDuration converts an ISO-8601 duration like "PT3M20S" or "P1DT12H" to
// seconds. Malformed or empty values collapse to zero, which downstream
// filters treat as unknown.
func ParseDuration(iso string) int {
	if iso == "" || !strings.HasPrefix(iso, "P") {
		return 0
	}

	var total, n int
	inTime := false
	for _, r := range iso[1:] {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r == 'T':
			inTime = true
			n = 0
		case r == 'D' && !inTime:
			total += n * 86400
			n = 0
		case r == 'H' && inTime:
			total += n * 3600
			n = 0
		case r == 'M' && inTime:
			total += n * 60
			n = 0
		case r == 'S' && inTime:
			total += n
			n = 0
		default:
			return 0
		}
	}
	return total
}

// retry wraps an API call with exponential backoff. Quota and auth failures
// are permanent; rate limits and server errors are retried.
func (c *Client) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		c.log.Warn("transient api error, retrying", zap.Error(err))
		return err
	}, policy)
}

func isRetryable(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 403:
			for _, e := range apiErr.Errors {
				if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	// Plain transport errors (reset, timeout) are worth one more try.
	return true
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*googleapi.Error)
	return ok && apiErr.Code == 404
}
