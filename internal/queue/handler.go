package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/insight"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// SummarizeHandler attaches AI summaries to history entries.
type SummarizeHandler struct {
	llm         *insight.Client
	historyRepo repository.HistoryRepository
	log         *zap.Logger
}

// NewSummarizeHandler creates a new summarize task handler.
func NewSummarizeHandler(llm *insight.Client, historyRepo repository.HistoryRepository) *SummarizeHandler {
	return &SummarizeHandler{
		llm:         llm,
		historyRepo: historyRepo,
		log:         logger.Named("enricher"),
	}
}

// ProcessTask implements asynq.Handler. It pulls the store's unsummarized
// entries (not the task's: re-delivery after a crash must not double-work)
// and attaches a summary to each. Entries the model skips stay unsummarized
// and are picked up by the next task.
func (h *SummarizeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalSummarizeScanPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	entries, err := h.historyRepo.Unsummarized(ctx, payload.BatchSize)
	if err != nil {
		return fmt.Errorf("load unsummarized entries: %w", err)
	}
	if len(entries) == 0 {
		h.log.Info("no entries pending summarization", zap.String("scan_id", payload.ScanID))
		return nil
	}

	summaries, err := h.llm.SummarizeEntries(ctx, entries)
	if err != nil {
		return fmt.Errorf("summarize entries: %w", err)
	}

	attached := 0
	for videoID, summary := range summaries {
		if err := h.historyRepo.SetSummary(ctx, videoID, summary); err != nil {
			h.log.Warn("failed to store summary",
				zap.String("video_id", videoID),
				zap.Error(err),
			)
			continue
		}
		attached++
	}

	h.log.Info("summaries attached",
		zap.String("scan_id", payload.ScanID),
		zap.Int("pending", len(entries)),
		zap.Int("attached", attached),
	)
	return nil
}
