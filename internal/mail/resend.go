// Package mail sends transactional email through a Resend-compatible HTTP API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Sender delivers a single email. Implemented by ResendClient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ResendClient sends email via the Resend HTTP API (or any compatible endpoint).
type ResendClient struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewResendClient returns a client that posts to baseURL with the given key and From address.
func NewResendClient(apiKey, baseURL, from string) *ResendClient {
	if baseURL == "" {
		baseURL = "https://api.resend.com/emails"
	}
	return &ResendClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send delivers one plain-text email. Does not log the message body.
func (c *ResendClient) Send(ctx context.Context, to, subject, body string) error {
	if c.APIKey == "" {
		return fmt.Errorf("mail: API key not configured")
	}
	if to == "" {
		return fmt.Errorf("mail: recipient address is empty")
	}
	payload := map[string]interface{}{
		"from":    c.From,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
