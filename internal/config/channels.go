package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// channelList is the on-disk shape of the monitored channel list.
type channelList struct {
	Channels []channelEntry `json:"channels"`
}

type channelEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// LoadChannels reads the channel list from a JSON file and validates each
// entry. Entries with a missing ID or name, or an ID that does not look like a
// platform channel ID, are skipped with a warning rather than failing the run.
func LoadChannels(filepath string) ([]model.ChannelRecord, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("read channel list: %w", err)
	}

	var list channelList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse channel list: %w", err)
	}

	if len(list.Channels) == 0 {
		return nil, fmt.Errorf("channel list %s has no channels", filepath)
	}

	log := logger.Named("channels")

	channels := make([]model.ChannelRecord, 0, len(list.Channels))
	for i, ch := range list.Channels {
		if ch.ID == "" {
			log.Warn("skipping channel: missing id", zap.Int("index", i))
			continue
		}
		if ch.Name == "" {
			log.Warn("skipping channel: missing name", zap.String("channel_id", ch.ID))
			continue
		}
		if !strings.HasPrefix(ch.ID, "UC") {
			log.Warn("skipping channel: unexpected id format",
				zap.String("channel_id", ch.ID),
				zap.String("name", ch.Name),
			)
			continue
		}

		category := ch.Category
		if category == "" {
			category = "unknown"
		}

		channels = append(channels, model.ChannelRecord{
			ChannelID: ch.ID,
			Name:      ch.Name,
			Category:  category,
		})
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("no valid channels found in %s", filepath)
	}

	return channels, nil
}

// ImportChannelsCSV merges rows from an exported channel CSV into the JSON
// channel list at dest, deduplicating by channel ID. Returns the number of
// newly added channels.
//
// Expected columns: "Channel ID", "Name", "Subscribers" and an optional
// free-text category column ("Categories & niches (AI assigned)").
func ImportChannelsCSV(csvPath, dest string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	existing := channelList{}
	if data, err := os.ReadFile(dest); err == nil {
		// Ignore parse errors: a corrupt destination is rebuilt from scratch.
		_ = json.Unmarshal(data, &existing)
	}

	seen := make(map[string]bool, len(existing.Channels))
	for _, ch := range existing.Channels {
		seen[ch.ID] = true
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	added := 0
	for {
		row, err := r.Read()
		if err != nil {
			break
		}

		id := field(row, "Channel ID")
		name := field(row, "Name")
		if id == "" || name == "" || !strings.HasPrefix(id, "UC") || seen[id] {
			continue
		}

		existing.Channels = append(existing.Channels, channelEntry{
			ID:       id,
			Name:     name,
			Category: simplifyCategory(field(row, "Categories & niches (AI assigned)")),
		})
		seen[id] = true
		added++
	}

	if added == 0 {
		return 0, nil
	}

	out, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal channel list: %w", err)
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return 0, fmt.Errorf("write channel list: %w", err)
	}

	return added, nil
}

// simplifyCategory maps a free-text category description to the scanner's
// small category vocabulary. Sports categories are checked first because they
// drive threshold selection downstream.
func simplifyCategory(raw string) string {
	if raw == "" {
		return "other"
	}
	s := strings.ToLower(raw)

	switch {
	case strings.Contains(s, "basketball"):
		return "basketball"
	case strings.Contains(s, "football") && !strings.Contains(s, "soccer"):
		return "football"
	case strings.Contains(s, "soccer") || strings.Contains(s, "football"):
		return "soccer"
	case strings.Contains(s, "combat") || strings.Contains(s, "mma") ||
		strings.Contains(s, "boxing") || strings.Contains(s, "wrestling"):
		return "combat"
	case strings.Contains(s, "sports highlight"):
		return "highlights"
	case strings.Contains(s, "sports news") || strings.Contains(s, "sports commentary"):
		return "media"
	case strings.Contains(s, "gaming"):
		return "gaming"
	case strings.Contains(s, "comedy") || strings.Contains(s, "prank") || strings.Contains(s, "challenge"):
		return "culture"
	case strings.Contains(s, "music") || strings.Contains(s, "hip hop") || strings.Contains(s, "rap"):
		return "music"
	case strings.Contains(s, "fitness") || strings.Contains(s, "workout"):
		return "fitness"
	case strings.Contains(s, "vlog") || strings.Contains(s, "lifestyle"):
		return "lifestyle"
	}

	return "other"
}

// ParseSubscriberCount is used by CSV import to read optional subscriber
// columns; malformed values collapse to zero rather than failing the import.
func ParseSubscriberCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
