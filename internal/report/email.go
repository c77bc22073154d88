package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

const resendEndpoint = "https://api.resend.com/emails"

// Email sections cap per classification.
const emailSectionLimit = 25

// EmailSender delivers reports through the Resend API.
type EmailSender struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
}

// NewEmailSender creates a Resend-backed sender.
func NewEmailSender(apiKey, from string) *EmailSender {
	return &EmailSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithEndpoint overrides the API endpoint. Test hook.
func (s *EmailSender) WithEndpoint(endpoint string) *EmailSender {
	s.endpoint = endpoint
	return s
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Send delivers one email. HTML is preferred by clients when present; the
// text body is the fallback.
func (s *EmailSender) Send(ctx context.Context, to, subject, text, htmlBody string) error {
	payload := resendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
	}
	if htmlBody != "" {
		payload.HTML = htmlBody
	} else {
		payload.Text = text
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// FormatEmail renders outperformers into a subject, plain-text body, and a
// mobile-friendly HTML body.
func FormatEmail(ops []*model.Outperformer, batchInfo string, now time.Time) (subject, text, htmlBody string) {
	g := GroupByClassification(ops)
	date := now.Format("2006-01-02")

	if len(ops) == 0 {
		subject = fmt.Sprintf("Outperformer Scanner [%s]: No outperformers found", date)
	} else {
		subject = fmt.Sprintf("Outperformer Scanner [%s]: %d outperformers found", date, len(ops))
		if len(g.TrendJackers) > 0 {
			subject += fmt.Sprintf(" (%d trend-jackers)", len(g.TrendJackers))
		}
	}

	text = FormatConsole(ops, nil, Options{BatchInfo: batchInfo})
	htmlBody = formatEmailHTML(g, len(ops), batchInfo, now)
	return subject, text, htmlBody
}

func formatEmailHTML(g Grouped, total int, batchInfo string, now time.Time) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:20px;background-color:#f5f5f5;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:12px;padding:24px 20px;">
`)

	fmt.Fprintf(&b, `<h1 style="margin:0 0 8px 0;font-size:24px;color:#1a1a1a;">Outperformance Report</h1>`)
	header := now.Format("January 2, 2006")
	if batchInfo != "" {
		header += " &bull; " + html.EscapeString(batchInfo)
	}
	fmt.Fprintf(&b, `<p style="margin:0 0 20px 0;font-size:16px;color:#666;">%s</p>`, header)

	if total == 0 {
		b.WriteString(`<div style="background-color:#f8f9fa;border-radius:12px;padding:24px 20px;text-align:center;">
<p style="margin:0 0 8px 0;font-size:18px;color:#333;">No outperformers found</p>
<p style="margin:0;font-size:15px;color:#666;">This is normal - outperformers are rare signals worth watching.</p>
</div>`)
	} else {
		fmt.Fprintf(&b, `<div style="background-color:#667eea;border-radius:12px;padding:20px;margin-bottom:24px;">
<p style="margin:0;font-size:36px;font-weight:700;color:#ffffff;">%d</p>
<p style="margin:4px 0 0 0;font-size:16px;color:rgba(255,255,255,0.9);">outperforming videos</p>
</div>`, total)

		fmt.Fprintf(&b, `<p style="margin:0 0 16px 0;font-size:15px;color:#333;">%d trend-jackers &bull; %d authority builders &bull; %d standard</p>`,
			len(g.TrendJackers), len(g.AuthorityBuilders), len(g.Standard))

		writeHTMLSection(&b, "Trend-Jackers", "#c53030", g.TrendJackers)
		writeHTMLSection(&b, "Authority Builders", "#b7791f", g.AuthorityBuilders)
		writeHTMLSection(&b, "Standard Outperformers", "#276749", g.Standard)
	}

	b.WriteString(`<p style="margin:32px 0 0 0;padding-top:16px;border-top:1px solid #eee;font-size:13px;color:#999;text-align:center;">Generated by Outperformer Scanner</p>
</div>
</body>
</html>`)

	return b.String()
}

func writeHTMLSection(b *strings.Builder, heading, color string, ops []*model.Outperformer) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(b, `<p style="margin:24px 0 16px 0;font-size:20px;font-weight:600;color:%s;">%s</p>`, color, heading)

	limit := len(ops)
	if limit > emailSectionLimit {
		limit = emailSectionLimit
	}
	for _, op := range ops[:limit] {
		fmt.Fprintf(b, `<div style="border-left:4px solid %s;background-color:#f8f9fa;border-radius:8px;padding:12px 16px;margin-bottom:12px;">
<a href="%s" style="font-size:16px;font-weight:600;color:#1a1a1a;text-decoration:none;">%s</a>
<p style="margin:6px 0 0 0;font-size:14px;color:#666;">%s (%s)</p>
<p style="margin:6px 0 0 0;font-size:14px;color:#666;">%.1fx ratio &bull; %.2f/day velocity &bull; %s old</p>`,
			color, op.URL(), html.EscapeString(op.Video.Title),
			html.EscapeString(op.Channel.Name), html.EscapeString(op.Channel.Category),
			op.Ratio, op.VelocityScore, FormatAge(op.AgeHours))
		if op.Summary != "" {
			fmt.Fprintf(b, `<p style="margin:8px 0 0 0;font-size:14px;color:#444;">%s</p>`, html.EscapeString(op.Summary))
		}
		b.WriteString("</div>")
	}
}
