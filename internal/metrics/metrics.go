// Package metrics exposes Prometheus instrumentation for the scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_scans_total",
		Help: "Completed scan runs.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scanner_scan_duration_seconds",
		Help:    "Wall time of a full scan run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	ChannelsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_channels_scanned_total",
		Help: "Channels successfully scanned.",
	})

	ChannelsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_channels_skipped_total",
		Help: "Channels skipped due to fetch failures or zero subscribers.",
	})

	VideosDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_videos_dropped_total",
		Help: "Videos removed by the filter funnel, by drop reason.",
	}, []string{"reason"})

	OutperformersDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_outperformers_detected_total",
		Help: "Outperformers detected, by classification.",
	}, []string{"classification"})

	NoiseAnnotated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_noise_annotated_total",
		Help: "Outperformers flagged as noise, by noise type.",
	}, []string{"noise_type"})

	QuotaUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scanner_api_quota_used",
		Help: "Platform API quota units consumed today.",
	})
)
