// Package webhook notifies downstream surfaces after publication:
// ISR revalidation for page paths and an optional automation webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lsk7209/coindrop/internal/domain/model"
)

const defaultTimeout = 10 * time.Second

// GuidePath is the public page path for one published guide.
func GuidePath(chain model.Chain, projectSlug string) string {
	return fmt.Sprintf("/airdrops/%s/%s/airdrop-guide", chain, projectSlug)
}

// PublishedNotification is the automation webhook payload emitted after
// a guide goes live.
type PublishedNotification struct {
	Event     string `json:"event"`
	ContentID int64  `json:"content_id"`
	Slug      string `json:"slug"`
	Chain     string `json:"chain"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// EventContentPublished is the only event currently emitted.
const EventContentPublished = "content.published"

// Notifier posts the two post-publication webhooks. Failures are
// reported to the caller but are never fatal to the pipeline.
type Notifier struct {
	httpClient      *http.Client
	baseURL         string
	revalidateToken string
	publishURL      string
	logger          *slog.Logger
}

// NewNotifier creates a notifier. publishURL may be empty, which
// disables the automation webhook.
func NewNotifier(baseURL, revalidateToken, publishURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		httpClient:      &http.Client{Timeout: defaultTimeout},
		baseURL:         baseURL,
		revalidateToken: revalidateToken,
		publishURL:      publishURL,
		logger:          logger.With("component", "webhook"),
	}
}

// Revalidate asks the site to regenerate the given page path.
func (n *Notifier) Revalidate(ctx context.Context, path string) error {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return fmt.Errorf("marshal revalidate body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/revalidate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create revalidate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.revalidateToken)

	return n.post(req, "revalidate")
}

// NotifyPublished posts the content.published event. No-op when the
// automation webhook is not configured. The URL points at the project's
// guide page; Slug carries the content slug.
func (n *Notifier) NotifyPublished(ctx context.Context, contentID int64, contentSlug, projectSlug string, chain model.Chain, title string) error {
	if n.publishURL == "" {
		return nil
	}

	payload := PublishedNotification{
		Event:     EventContentPublished,
		ContentID: contentID,
		Slug:      contentSlug,
		Chain:     string(chain),
		Title:     title,
		URL:       n.baseURL + GuidePath(chain, projectSlug),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal publish notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.publishURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return n.post(req, "publish")
}

func (n *Notifier) post(req *http.Request, kind string) error {
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s webhook: %w", kind, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s webhook: http status %d", kind, resp.StatusCode)
	}
	n.logger.Debug("webhook delivered", "kind", kind, "url", req.URL.String())
	return nil
}
