package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

var reportTime = time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

func op(videoID, title, classification string, velocity float64) *model.Outperformer {
	return &model.Outperformer{
		Video: model.VideoRecord{
			VideoID: videoID,
			Title:   title,
			Views:   120_000,
		},
		Channel: model.ChannelRecord{
			Name:        "Hoops Daily",
			Category:    "basketball",
			Subscribers: 40_000,
		},
		Ratio:          3.0,
		VelocityScore:  velocity,
		AgeHours:       60,
		Classification: classification,
		Themes:         []string{"basketball"},
		TitlePatterns:  []string{"listicle"},
	}
}

func TestGroupByClassification(t *testing.T) {
	ops := []*model.Outperformer{
		op("a", "A", model.ClassTrendJacker, 3),
		op("b", "B", model.ClassStandard, 1),
		op("c", "C", model.ClassAuthorityBuilder, 0.6),
		op("d", "D", model.ClassTrendJacker, 2.5),
	}

	g := GroupByClassification(ops)
	assert.Len(t, g.TrendJackers, 2)
	assert.Len(t, g.AuthorityBuilders, 1)
	assert.Len(t, g.Standard, 1)
	// Input order preserved within a bucket.
	assert.Equal(t, "a", g.TrendJackers[0].Video.VideoID)
	assert.Equal(t, "d", g.TrendJackers[1].Video.VideoID)
}

func TestAllNoise(t *testing.T) {
	noisy := op("a", "A", model.ClassStandard, 1)
	noisy.IsNoise = true
	clean := op("b", "B", model.ClassStandard, 1)

	assert.True(t, AllNoise([]*model.Outperformer{noisy}))
	assert.False(t, AllNoise([]*model.Outperformer{noisy, clean}))
	assert.False(t, AllNoise(nil))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "36h", FormatAge(36))
	assert.Equal(t, "2.0d", FormatAge(48))
	assert.Equal(t, "7.0d", FormatAge(168))
}

func TestFormatConsole(t *testing.T) {
	ops := []*model.Outperformer{
		op("a", "Top 10 Crossovers", model.ClassTrendJacker, 3),
		op("b", "Deep Dive", model.ClassStandard, 1),
	}

	out := FormatConsole(ops, nil, Options{MinAgeHours: 48, MaxAgeHours: 168})
	assert.Contains(t, out, "OUTPERFORMERS (sorted by velocity score)")
	assert.Contains(t, out, "TREND-JACKERS")
	assert.Contains(t, out, "STANDARD OUTPERFORMERS")
	assert.NotContains(t, out, "AUTHORITY BUILDERS")
	assert.Contains(t, out, "Top 10 Crossovers")
	assert.Contains(t, out, "PATTERN SUMMARY")
	assert.Contains(t, out, "basketball: 2 videos")
	assert.Contains(t, out, "Trend-Jackers: 1")
	assert.Contains(t, out, "https://youtube.com/watch?v=a")
}

func TestFormatConsoleEmpty(t *testing.T) {
	out := FormatConsole(nil, nil, Options{MinAgeHours: 48, MaxAgeHours: 168})
	assert.Contains(t, out, "No outperforming videos found")
	assert.Contains(t, out, "48-168 hours old")
}

func TestFormatConsoleMidPerformersShownWhenEmpty(t *testing.T) {
	mid := op("m", "Almost There", model.ClassStandard, 0.4)
	mid.Ratio = 0.6

	out := FormatConsole(nil, []*model.Outperformer{mid}, Options{MinAgeHours: 48, MaxAgeHours: 168})
	assert.Contains(t, out, "MID-PERFORMERS")
	assert.Contains(t, out, "Almost There")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	path, err := Save(dir, "report body", reportTime)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report_2026-08-25_09-30-00.txt"))
}

func TestFormatEmail(t *testing.T) {
	ops := []*model.Outperformer{
		op("a", "Top 10 <Crossovers>", model.ClassTrendJacker, 3),
		op("b", "Deep Dive", model.ClassStandard, 1),
	}

	subject, text, htmlBody := FormatEmail(ops, "batch 2/5", reportTime)
	assert.Equal(t, "Outperformer Scanner [2026-08-25]: 2 outperformers found (1 trend-jackers)", subject)
	assert.Contains(t, text, "Top 10 <Crossovers>")
	assert.Contains(t, htmlBody, "Top 10 &lt;Crossovers&gt;")
	assert.Contains(t, htmlBody, "batch 2/5")
	assert.Contains(t, htmlBody, "Trend-Jackers")

	subject, _, htmlBody = FormatEmail(nil, "", reportTime)
	assert.Equal(t, "Outperformer Scanner [2026-08-25]: No outperformers found", subject)
	assert.Contains(t, htmlBody, "No outperformers found")
}

func TestEmailSenderSend(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewEmailSender("key123", "Scanner <scanner@resend.dev>").WithEndpoint(srv.URL)
	err := sender.Send(context.Background(), "team@example.com", "subject", "text body", "<p>html</p>")
	require.NoError(t, err)

	assert.Equal(t, "Bearer key123", auth)
	assert.Equal(t, []string{"team@example.com"}, got.To)
	assert.Equal(t, "<p>html</p>", got.HTML)
	assert.Empty(t, got.Text)
}

func TestEmailSenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewEmailSender("bad", "Scanner <scanner@resend.dev>").WithEndpoint(srv.URL)
	err := sender.Send(context.Background(), "team@example.com", "s", "t", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
