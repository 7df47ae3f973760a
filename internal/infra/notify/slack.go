package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/TaylorDurden/rank-everything/internal/domain/notifications"
)

// Slack posts evaluation notifications to an incoming-webhook URL.
// Delivery is best effort; callers log errors and move on.
type Slack struct {
	webhookURL string
	httpClient *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Slack) Send(ctx context.Context, n notifications.Notification) error {
	if s.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(s.buildMessage(n))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *Slack) buildMessage(n notifications.Notification) map[string]any {
	title := "Notification"
	description := "You have a new notification."
	switch n.Type {
	case notifications.TypeEvaluationCompleted:
		title = "Evaluation Completed"
		description = fmt.Sprintf("The evaluation for *%s* has been completed.", orDefault(n.AssetName, "your asset"))
	case notifications.TypeReportGenerated:
		title = "Report Generated"
		description = fmt.Sprintf("A detailed report has been generated for *%s*.", orDefault(n.AssetName, "your asset"))
	}

	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": title, "emoji": true},
		},
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": description},
		},
	}
	if n.ReportURL != "" {
		blocks = append(blocks, map[string]any{
			"type": "actions",
			"elements": []map[string]any{
				{
					"type":  "button",
					"text":  map[string]any{"type": "plain_text", "text": "View Report", "emoji": true},
					"style": "primary",
					"url":   n.ReportURL,
				},
			},
		})
	}
	blocks = append(blocks, map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": fmt.Sprintf("Tenant: %s", n.TenantID)},
		},
	})

	return map[string]any{
		"text":   title,
		"blocks": blocks,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
