package mailer

import (
	"bytes"         // Request body buffer
	"context"       // Request-scoped cancellation
	"encoding/json" // JSON encoding
	"errors"
	"fmt"
	"io"
	"net/http" // Outbound HTTP
	"time"
)

// ErrMissingAPIKey is returned when no provider key is configured. The caller
// surfaces it as an external service error instead of crashing.
var ErrMissingAPIKey = errors.New("email provider API key is not configured")

// Sender is the outbound email surface handlers depend on.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
	SendVerificationCode(ctx context.Context, to, code string) error
}

// Client sends transactional email through an HTTP provider API.
type Client struct {
	APIKey     string       // Provider API key
	BaseURL    string       // Provider API base URL
	From       string       // Sender address
	HTTPClient *http.Client // Underlying HTTP client
}

// New builds a Client with a sane request timeout.
func New(apiKey, baseURL, from string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// sendRequest is the provider's email payload.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one HTML email. Single attempt, no retries.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	body, err := json.Marshal(sendRequest{From: c.From, To: []string{to}, Subject: subject, HTML: html})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Include a snippet of the provider response for diagnostics
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// SendVerificationCode emails a 6-digit code with its 15-minute validity note.
func (c *Client) SendVerificationCode(ctx context.Context, to, code string) error {
	html := fmt.Sprintf(
		`<div style="font-family:sans-serif">`+
			`<h2>Verify your email</h2>`+
			`<p>Your MedSupply Exchange verification code is:</p>`+
			`<p style="font-size:28px;letter-spacing:4px"><strong>%s</strong></p>`+
			`<p>This code expires in 15 minutes.</p>`+
			`</div>`, code)
	return c.Send(ctx, to, "Your verification code", html)
}
