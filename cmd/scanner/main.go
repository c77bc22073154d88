// Command scanner runs one detection pass over the configured channel list
// and delivers the resulting report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/events"
	"github.com/creator-intel/outperformer-scanner-go/internal/insight"
	"github.com/creator-intel/outperformer-scanner-go/internal/metrics"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
	"github.com/creator-intel/outperformer-scanner-go/internal/queue"
	"github.com/creator-intel/outperformer-scanner-go/internal/report"
	"github.com/creator-intel/outperformer-scanner-go/internal/scanner"
	"github.com/creator-intel/outperformer-scanner-go/internal/trend"
	"github.com/creator-intel/outperformer-scanner-go/internal/youtube"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

type flags struct {
	batch   int
	all     bool
	status  bool
	reset   bool
	trends  bool
	noEmail bool
	csvPath string
}

func main() {
	var f flags
	pflag.IntVar(&f.batch, "batch", -1, "scan a specific batch index instead of the stored cursor")
	pflag.BoolVar(&f.all, "all", false, "scan every channel, ignoring batch rotation")
	pflag.BoolVar(&f.status, "status", false, "print batch and quota status, then exit")
	pflag.BoolVar(&f.reset, "reset", false, "reset the batch cursor to zero, then exit")
	pflag.BoolVar(&f.trends, "trends", false, "print the trend analysis report, then exit")
	pflag.BoolVar(&f.noEmail, "no-email", false, "skip email delivery for this run")
	pflag.StringVar(&f.csvPath, "import", "", "import channels from a CSV export into the channel list")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f); err != nil {
		logger.Named("main").Error("scan failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, f flags) error {
	log := logger.Named("main")

	if f.csvPath != "" {
		added, err := config.ImportChannelsCSV(f.csvPath, cfg.Batch.ChannelsFile)
		if err != nil {
			return fmt.Errorf("import channels: %w", err)
		}
		fmt.Printf("Imported %d new channels into %s\n", added, cfg.Batch.ChannelsFile)
		return nil
	}

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	historyRepo := repository.NewHistoryRepository(pool)
	quotaRepo := repository.NewQuotaRepository(pool)
	batchRepo := repository.NewBatchRepository(pool)

	switch {
	case f.status:
		return printStatus(ctx, cfg, batchRepo, quotaRepo)
	case f.reset:
		if err := batchRepo.Reset(ctx); err != nil {
			return fmt.Errorf("reset batch cursor: %w", err)
		}
		fmt.Println("Batch cursor reset to 0.")
		return nil
	case f.trends:
		text, err := trend.NewAnalyzer(historyRepo).Report(ctx)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	usage, err := quotaRepo.Usage(ctx, today(), cfg.YouTube.DailyQuota)
	if err != nil {
		return fmt.Errorf("check quota: %w", err)
	}
	ceiling := cfg.YouTube.DailyQuota * cfg.YouTube.QuotaThreshold / 100
	if usage.QuotaUsed >= ceiling {
		return fmt.Errorf("daily quota threshold reached: %d of %d units used (threshold %d%%)",
			usage.QuotaUsed, cfg.YouTube.DailyQuota, cfg.YouTube.QuotaThreshold)
	}

	channels, err := config.LoadChannels(cfg.Batch.ChannelsFile)
	if err != nil {
		return err
	}

	scope, batchInfo, advance, err := selectBatch(ctx, channels, cfg.Batch.Size, batchRepo, f)
	if err != nil {
		return err
	}

	log.Info("scan starting",
		zap.Int("channels", len(scope)),
		zap.String("batch", batchInfo),
		zap.Int("quota_used", usage.QuotaUsed),
	)

	ytClient, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		return fmt.Errorf("create youtube client: %w", err)
	}

	engine := scanner.NewEngine(&cfg.Scanner, &apiSource{yt: ytClient})

	start := time.Now()
	result, err := engine.FindOutperformers(ctx, scope)
	if err != nil {
		return err
	}
	metrics.ScansTotal.Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	scanID := uuid.New()
	scannedAt := time.Now().UTC()

	entries := make([]*model.HistoryEntry, 0, len(result.Outperformers))
	for _, op := range result.Outperformers {
		entries = append(entries, model.NewHistoryEntry(op, scanID, scannedAt))
	}
	added, err := historyRepo.AddEntries(ctx, entries)
	if err != nil {
		return fmt.Errorf("store history: %w", err)
	}

	// Every list call costs one unit, so the unit count doubles as the
	// operation count.
	units := ytClient.QuotaUsed()
	if err := quotaRepo.Record(ctx, today(), units, units); err != nil {
		log.Warn("failed to record quota usage", zap.Error(err))
	}
	metrics.QuotaUsed.Set(float64(usage.QuotaUsed + units))

	publishDetections(ctx, cfg, log, result.Outperformers, scanID)

	if cfg.Redis.URL != "" && added > 0 {
		enqueueEnrichment(ctx, cfg, log, scanID)
	}

	ideas := generateIdeas(ctx, cfg, log, result.Outperformers)

	out := report.FormatConsole(result.Outperformers, result.MidPerformers, report.Options{
		MinAgeHours: cfg.Scanner.MinVideoAgeHours,
		MaxAgeHours: cfg.Scanner.MaxVideoAgeHours,
		BatchInfo:   batchInfo,
		Ideas:       ideas,
	})
	fmt.Println(out)

	if path, err := report.Save(cfg.Report.OutputDir, out, scannedAt); err != nil {
		log.Warn("failed to save report", zap.Error(err))
	} else {
		log.Info("report saved", zap.String("path", path))
	}

	if cfg.Email.Enabled && !f.noEmail {
		sendEmail(ctx, cfg, log, result, batchInfo, scannedAt)
	}

	if advance {
		state, err := batchRepo.Advance(ctx, totalBatches(len(channels), cfg.Batch.Size))
		if err != nil {
			log.Warn("failed to advance batch cursor", zap.Error(err))
		} else {
			log.Info("batch cursor advanced", zap.Int("next_batch", state.CurrentBatch))
		}
	}

	log.Info("scan complete",
		zap.Int("channels_scanned", result.ChannelsScanned),
		zap.Int("channels_skipped", result.ChannelsSkipped),
		zap.Int("videos_checked", result.VideosChecked),
		zap.Int("outperformers", len(result.Outperformers)),
		zap.Int("mid_performers", len(result.MidPerformers)),
		zap.Int("new_entries", added),
		zap.Int("quota_units", units),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// apiSource adapts the youtube client to the engine's source interface.
type apiSource struct {
	yt *youtube.Client
}

func (s *apiSource) ChannelStats(ctx context.Context, channelID string) (*scanner.ChannelStats, error) {
	stats, err := s.yt.ChannelStats(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &scanner.ChannelStats{
		ChannelID:   stats.ChannelID,
		Title:       stats.Title,
		Subscribers: stats.Subscribers,
		About:       stats.About,
	}, nil
}

func (s *apiSource) RecentVideos(ctx context.Context, channelID string, limit int64) ([]model.VideoRecord, error) {
	return s.yt.RecentVideos(ctx, channelID, limit)
}

// selectBatch resolves which slice of the channel list this run covers. The
// cursor only advances on normal rotation runs, not on --all or --batch.
func selectBatch(ctx context.Context, channels []model.ChannelRecord, size int, batchRepo repository.BatchRepository, f flags) ([]model.ChannelRecord, string, bool, error) {
	total := totalBatches(len(channels), size)

	switch {
	case f.all:
		return channels, "", false, nil
	case f.batch >= 0:
		if f.batch >= total {
			return nil, "", false, fmt.Errorf("batch %d out of range: %d channels make %d batches", f.batch, len(channels), total)
		}
		return batchSlice(channels, f.batch, size), fmt.Sprintf("batch %d/%d", f.batch+1, total), false, nil
	}

	state, err := batchRepo.Get(ctx)
	if err != nil {
		return nil, "", false, fmt.Errorf("load batch cursor: %w", err)
	}
	current := state.CurrentBatch
	if current >= total {
		// Channel list shrank since the cursor was written.
		current = 0
	}
	return batchSlice(channels, current, size), fmt.Sprintf("batch %d/%d", current+1, total), true, nil
}

func totalBatches(channels, size int) int {
	if size <= 0 {
		return 1
	}
	n := (channels + size - 1) / size
	if n == 0 {
		n = 1
	}
	return n
}

func batchSlice(channels []model.ChannelRecord, index, size int) []model.ChannelRecord {
	if size <= 0 {
		return channels
	}
	start := index * size
	if start >= len(channels) {
		return nil
	}
	end := start + size
	if end > len(channels) {
		end = len(channels)
	}
	return channels[start:end]
}

func publishDetections(ctx context.Context, cfg *config.Config, log *zap.Logger, ops []*model.Outperformer, scanID uuid.UUID) {
	if cfg.RabbitMQ.Host == "" || len(ops) == 0 {
		return
	}

	publisher, err := events.NewPublisher(&cfg.RabbitMQ)
	if err != nil {
		log.Warn("event publisher unavailable, detections not published", zap.Error(err))
		return
	}
	defer publisher.Close()

	published := 0
	for _, op := range ops {
		if err := publisher.PublishDetection(ctx, op, scanID); err != nil {
			log.Warn("failed to publish detection",
				zap.String("video_id", op.Video.VideoID),
				zap.Error(err),
			)
			continue
		}
		published++
	}
	log.Info("detections published", zap.Int("published", published), zap.Int("total", len(ops)))
}

func enqueueEnrichment(ctx context.Context, cfg *config.Config, log *zap.Logger, scanID uuid.UUID) {
	client, err := queue.NewClient(cfg.Redis.URL)
	if err != nil {
		log.Warn("queue unavailable, summaries will not be generated", zap.Error(err))
		return
	}
	defer client.Close()

	if err := client.EnqueueSummarizeScan(ctx, scanID.String(), 0); err != nil {
		log.Warn("failed to enqueue summarize task", zap.Error(err))
	}
}

func generateIdeas(ctx context.Context, cfg *config.Config, log *zap.Logger, ops []*model.Outperformer) string {
	if cfg.Ollama.BaseURL == "" || len(ops) == 0 {
		return ""
	}

	llm := insight.NewClient(insight.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		APIKey:  cfg.Ollama.APIKey,
		Timeout: cfg.Ollama.Timeout,
	})
	ideas, err := llm.GenerateIdeas(ctx, ops)
	if err != nil {
		log.Warn("content idea generation failed", zap.Error(err))
		return ""
	}
	return ideas
}

// sendEmail delivers the report. When every outperformer is noise the email
// falls back to mid-performers so the recipient still gets a signal.
func sendEmail(ctx context.Context, cfg *config.Config, log *zap.Logger, result *scanner.ScanResult, batchInfo string, now time.Time) {
	if cfg.Email.APIKey == "" || cfg.Email.To == "" {
		log.Warn("email enabled but api key or recipient missing, skipping delivery")
		return
	}

	ops := result.Outperformers
	if (len(ops) == 0 || report.AllNoise(ops)) && len(result.MidPerformers) > 0 {
		ops = result.MidPerformers
	}

	subject, text, htmlBody := report.FormatEmail(ops, batchInfo, now)
	sender := report.NewEmailSender(cfg.Email.APIKey, cfg.Email.From)
	if err := sender.Send(ctx, cfg.Email.To, subject, text, htmlBody); err != nil {
		log.Warn("email delivery failed", zap.Error(err))
		return
	}
	log.Info("report emailed", zap.String("to", cfg.Email.To), zap.String("subject", subject))
}

func printStatus(ctx context.Context, cfg *config.Config, batchRepo repository.BatchRepository, quotaRepo repository.QuotaRepository) error {
	state, err := batchRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load batch state: %w", err)
	}
	usage, err := quotaRepo.Usage(ctx, today(), cfg.YouTube.DailyQuota)
	if err != nil {
		return fmt.Errorf("load quota usage: %w", err)
	}

	fmt.Printf("Batch cursor: %d of %d batches\n", state.CurrentBatch, state.TotalBatches)
	if state.LastRun.Unix() <= 0 {
		fmt.Println("Last run: never")
	} else {
		fmt.Printf("Last run: %s\n", state.LastRun.Format(time.RFC3339))
	}
	fmt.Printf("Quota today: %d/%d units used (%d remaining, %d operations)\n",
		usage.QuotaUsed, usage.QuotaLimit, usage.QuotaRemaining, usage.OperationsCount)
	return nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
