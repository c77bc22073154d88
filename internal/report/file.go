package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Save writes a rendered report under dir as report_<timestamp>.txt and
// returns the file path.
func Save(dir, content string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.txt", now.Format("2006-01-02_15-04-05")))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
