package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"musicclean/internal/config"
)

const userAgent = "musicclean/0.1"

// BatchSummary describes a finished batch.
type BatchSummary struct {
	Command   string
	Processed int
	Cleaned   int
	Clean     int
	Failed    int
	Muted     time.Duration
	Elapsed   time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error
	NotifyError(ctx context.Context, err error, label string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		minFiles: cfg.Notifications.MinFiles,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	minFiles int
	client   *http.Client
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, s BatchSummary) error {
	if s.Processed < n.minFiles {
		return nil
	}
	command := strings.TrimSpace(s.Command)
	if command == "" {
		command = "clean"
	}
	elapsed := s.Elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	msg := message{
		title: fmt.Sprintf("musicclean - %s complete", command),
		tags:  []string{"musicclean", command, "completed"},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d song(s) in %s", s.Processed, elapsed)
	if s.Cleaned > 0 {
		fmt.Fprintf(&b, "\nMuted: %d song(s), %.1fs total", s.Cleaned, s.Muted.Seconds())
	}
	if s.Clean > 0 {
		fmt.Fprintf(&b, "\nAlready clean: %d", s.Clean)
	}
	if s.Failed > 0 {
		fmt.Fprintf(&b, "\nFailed: %d", s.Failed)
		msg.title += " (with errors)"
		msg.tags = append(msg.tags, "warning")
		msg.priority = "high"
	}
	msg.body = b.String()
	return n.send(ctx, msg)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, label string) error {
	var b strings.Builder
	b.WriteString("Error")
	if label = strings.TrimSpace(label); label != "" {
		b.WriteString(" with ")
		b.WriteString(label)
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return n.send(ctx, message{
		title:    "musicclean - Error",
		body:     b.String(),
		tags:     []string{"musicclean", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, message{
		title:    "musicclean - Test",
		body:     "Notification test",
		tags:     []string{"musicclean", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) NotifyBatchCompleted(context.Context, BatchSummary) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
