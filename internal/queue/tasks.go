// Package queue defines the async enrichment tasks and their asynq plumbing.
package queue

import (
	"encoding/json"
	"fmt"
)

// Task types
const (
	TypeSummarizeScan = "enrichment:summarize_scan"
)

// SummarizeScanPayload asks the enricher to attach AI summaries to history
// entries still missing one. The scan ID is carried for log correlation only;
// the handler works off the store's own unsummarized set, which makes retries
// and overlapping tasks idempotent.
type SummarizeScanPayload struct {
	ScanID    string `json:"scan_id"`
	BatchSize int    `json:"batch_size"`
}

// NewSummarizeScanTask creates a new summarize task payload.
func NewSummarizeScanTask(scanID string, batchSize int) (*SummarizeScanPayload, error) {
	if scanID == "" {
		return nil, fmt.Errorf("scan ID is required")
	}
	if batchSize <= 0 {
		batchSize = 20
	}

	return &SummarizeScanPayload{
		ScanID:    scanID,
		BatchSize: batchSize,
	}, nil
}

// Marshal serializes the payload to JSON.
func (p *SummarizeScanPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalSummarizeScanPayload deserializes JSON to payload.
func UnmarshalSummarizeScanPayload(data []byte) (*SummarizeScanPayload, error) {
	var payload SummarizeScanPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}
