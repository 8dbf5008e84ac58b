package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

var typeEmoji = map[model.FeedbackType]string{
	model.FeedbackImprovement: "💡",
	model.FeedbackError:       "❌",
	model.FeedbackUnclear:     "❓",
}

// SlackWebhook posts new feedback to an incoming-webhook URL.
type SlackWebhook struct {
	url    string
	client *http.Client
}

func NewSlackWebhook(url string, timeout time.Duration) *SlackWebhook {
	return &SlackWebhook{url: url, client: &http.Client{Timeout: timeout}}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

// SlackMessage is the webhook payload.
type SlackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

// NewSlackMessage renders f as a block message.
func NewSlackMessage(f model.TranslationFeedback) SlackMessage {
	key := f.TranslationKey
	if key == "" {
		key = "N/A"
	}
	return SlackMessage{
		Text: "新しい翻訳フィードバックが届きました",
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: typeEmoji[f.Type] + " 新しい翻訳フィードバック"},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*言語:*\n" + f.Language},
					{Type: "mrkdwn", Text: "*タイプ:*\n" + string(f.Type)},
					{Type: "mrkdwn", Text: "*ページ:*\n" + f.Page},
					{Type: "mrkdwn", Text: "*キー:*\n" + key},
				},
			},
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: "*提案内容:*\n" + f.Suggestion},
			},
		},
	}
}

// Send posts f. A non-2xx response is an error.
func (w *SlackWebhook) Send(ctx context.Context, f model.TranslationFeedback) error {
	body, err := json.Marshal(NewSlackMessage(f))
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
