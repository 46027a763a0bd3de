package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taxfiler/internal/config"
)

const userAgent = "taxfiler/0.1.0"

// Service defines the notification surface used by the organizer and CLI.
type Service interface {
	NotifyBatchCompleted(ctx context.Context, filed, failed int, duration time.Duration) error
	NotifyUnclassified(ctx context.Context, fileName string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed Service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, filed, failed int, duration time.Duration) error {
	if failed == 0 && !n.notifySuccess {
		return nil
	}
	data := payload{
		title:   "taxfiler - Batch Complete",
		message: fmt.Sprintf("Filed %d, failed %d (took %s)", filed, failed, duration.Round(time.Second)),
		tags:    []string{"taxfiler", "batch", "completed"},
	}
	if failed > 0 {
		data.title = "taxfiler - Batch Needs Attention"
		data.tags = []string{"taxfiler", "batch", "warning"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUnclassified(ctx context.Context, fileName string) error {
	data := payload{
		title:   "taxfiler - Unclassified Document",
		message: fmt.Sprintf("Could not classify %s; it was left in the inbox", strings.TrimSpace(fileName)),
		tags:    []string{"taxfiler", "unclassified"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if label := strings.TrimSpace(contextLabel); label != "" {
		message = fmt.Sprintf("%s: %s", label, message)
	}
	data := payload{
		title:    "taxfiler - Error",
		message:  message,
		tags:     []string{"taxfiler", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "taxfiler - Test",
		message: "Notifications are configured",
		tags:    []string{"taxfiler", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyUnclassified(context.Context, string) error                 { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
