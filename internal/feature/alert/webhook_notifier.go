package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"alpha_sentiment/internal/shared/env"
)

// EnvKeyWebhook は通知先WebhookのURLを指定する環境変数です。旧名の ALERT_WEBHOOK も受け付けます。
const EnvKeyWebhook = "ALPHA_SENTIMENT_ALERT_WEBHOOK"

type markdownPayload struct {
	MsgType  string          `json:"msgtype"`
	Markdown markdownContent `json:"markdown"`
}

type markdownContent struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// WebhookNotifier はDingTalk/WeCom互換のmarkdownメッセージをPOSTします。
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier は WebhookNotifier を生成します。urlが空の場合、Notifyは何もしません。
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: client}
}

// LoadWebhookURL は環境変数からWebhook URLを読み込みます。
func LoadWebhookURL() string {
	return env.First("", EnvKeyWebhook, "ALERT_WEBHOOK")
}

// Enabled は通知先が設定されているかを返します。
func (n *WebhookNotifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Notify は通知を送信します。2xx以外の応答はエラーです。再試行はしません。
func (n *WebhookNotifier) Notify(ctx context.Context, a Alert) error {
	if !n.Enabled() {
		slog.Debug("alert webhook not configured, skipping", "title", a.Title)
		return nil
	}

	body, err := json.Marshal(markdownPayload{
		MsgType:  "markdown",
		Markdown: markdownContent{Title: a.Title, Text: a.Markdown()},
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send alert: unexpected status %d", resp.StatusCode)
	}
	slog.Info("alert sent", "title", a.Title, "status", a.Status)
	return nil
}
