// Package notify delivers transactional email through the Resend HTTP API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/neticnz/matcher/internal/config"
	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

const maxErrorBodyBytes = 2048

// Client sends email via Resend. Sends are never retried here; the caller
// decides what a failed batch means.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a mail client from config.
func NewClient(cfg config.EmailConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendMatchNotification sends one consolidated email listing the new
// matches for a want, in the order they were discovered.
func (c *Client) SendMatchNotification(ctx context.Context, to, wantTitle string, matches []domain.Match) error {
	subject := matchSubject(wantTitle, len(matches))

	html, err := matchEmailHTML(wantTitle, matches)
	if err != nil {
		return fmt.Errorf("render match email: %w", err)
	}

	return c.send(ctx, to, subject, html)
}

// SendOfferNotification tells a want's owner that someone has offered the
// item directly.
func (c *Client) SendOfferNotification(ctx context.Context, to, wantTitle, offererName, offererEmail, message string) error {
	subject := fmt.Sprintf("Someone has what you want: %q", wantTitle)

	html, err := offerEmailHTML(wantTitle, offererName, offererEmail, message)
	if err != nil {
		return fmt.Errorf("render offer email: %w", err)
	}

	return c.send(ctx, to, subject, html)
}

// matchSubject is a deterministic function of the want title and match
// count.
func matchSubject(wantTitle string, count int) string {
	plural := ""
	if count != 1 {
		plural = "es"
	}
	return fmt.Sprintf("Netic found %d match%s for %q", count, plural, wantTitle)
}

func (c *Client) send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Warn("Resend returned non-OK status",
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", duration),
		)
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("email sent",
		logger.String("subject", subject),
		logger.Duration("duration", duration),
	)
	return nil
}
