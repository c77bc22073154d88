// Package handler exposes the read-only HTTP API over the history store.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/trend"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

const (
	defaultListDays  = 7
	defaultListLimit = 50
	maxListLimit     = 500
)

// Handler serves the scanner's HTTP API.
type Handler struct {
	historyRepo repository.HistoryRepository
	quotaRepo   repository.QuotaRepository
	analyzer    *trend.Analyzer
	cfg         *config.Config
	log         *zap.Logger
}

// New creates a new API handler.
func New(historyRepo repository.HistoryRepository, quotaRepo repository.QuotaRepository, analyzer *trend.Analyzer, cfg *config.Config) *Handler {
	return &Handler{
		historyRepo: historyRepo,
		quotaRepo:   quotaRepo,
		analyzer:    analyzer,
		cfg:         cfg,
		log:         logger.Named("api"),
	}
}

// Register mounts all API routes on the router group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.GET("/outperformers", h.ListOutperformers)
	r.GET("/outperformers/:video_id", h.GetOutperformer)
	r.GET("/outperformers/:video_id/similar", h.SimilarOutperformers)
	r.GET("/stats", h.Stats)
	r.GET("/trends", h.Trends)
}

// ListOutperformers returns recent history entries. Query params: days
// (lookback window, default 7) and limit (default 50, capped at 500).
func (h *Handler) ListOutperformers(c *gin.Context) {
	days := intQuery(c, "days", defaultListDays)
	limit := intQuery(c, "limit", defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if days <= 0 || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days and limit must be positive"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	entries, err := h.historyRepo.ListRecent(c.Request.Context(), since, limit)
	if err != nil {
		h.log.Error("list outperformers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load outperformers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outperformers": entries,
		"count":         len(entries),
		"days":          days,
	})
}

// GetOutperformer returns one history entry by video ID.
func (h *Handler) GetOutperformer(c *gin.Context) {
	videoID := c.Param("video_id")

	entry, err := h.historyRepo.GetByVideoID(c.Request.Context(), videoID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "outperformer not found"})
			return
		}
		h.log.Error("get outperformer failed", zap.String("video_id", videoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load outperformer"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SimilarOutperformers returns stored entries that share title patterns or
// themes with the given video, best match first.
func (h *Handler) SimilarOutperformers(c *gin.Context) {
	videoID := c.Param("video_id")
	limit := intQuery(c, "limit", 10)
	if limit <= 0 || limit > maxListLimit {
		limit = 10
	}

	entries, err := h.historyRepo.FindSimilar(c.Request.Context(), videoID, limit)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "outperformer not found"})
			return
		}
		h.log.Error("find similar failed", zap.String("video_id", videoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find similar outperformers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video_id": videoID,
		"similar":  entries,
		"count":    len(entries),
	})
}

// Stats returns the store-wide summary plus today's quota consumption.
func (h *Handler) Stats(c *gin.Context) {
	summary, err := h.historyRepo.Summary(c.Request.Context())
	if err != nil {
		h.log.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	resp := gin.H{"history": summary}

	if patterns, err := h.historyRepo.PatternStats(c.Request.Context()); err != nil {
		h.log.Warn("pattern stats failed", zap.Error(err))
	} else {
		resp["patterns"] = patterns
	}
	if themes, err := h.historyRepo.ThemeStats(c.Request.Context()); err != nil {
		h.log.Warn("theme stats failed", zap.Error(err))
	} else {
		resp["themes"] = themes
	}

	if h.quotaRepo != nil {
		quota, err := h.quotaRepo.Usage(c.Request.Context(), today(), h.cfg.YouTube.DailyQuota)
		if err != nil {
			h.log.Warn("quota lookup failed", zap.Error(err))
		} else {
			resp["quota"] = quota
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Trends returns the full trend snapshot over the last 30 days.
func (h *Handler) Trends(c *gin.Context) {
	snap, err := h.analyzer.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error("trends failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute trends"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
