package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// Client wraps the asynq client for enqueueing enrichment tasks.
type Client struct {
	asynqClient *asynq.Client
	log         *zap.Logger
}

// NewClient creates a new queue client.
func NewClient(redisURL string) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{
		asynqClient: asynq.NewClient(redisOpt),
		log:         logger.Named("queue"),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// EnqueueSummarizeScan enqueues a summarize task for the scan's new entries.
func (c *Client) EnqueueSummarizeScan(ctx context.Context, scanID string, batchSize int) error {
	payload, err := NewSummarizeScanTask(scanID, batchSize)
	if err != nil {
		return fmt.Errorf("failed to create task payload: %w", err)
	}

	data, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeSummarizeScan, data)
	info, err := c.asynqClient.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue summarize task: %w", err)
	}

	c.log.Info("enqueued summarize task",
		zap.String("task_id", info.ID),
		zap.String("scan_id", scanID),
		zap.String("queue", info.Queue),
	)
	return nil
}
