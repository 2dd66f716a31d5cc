package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"eventhub/internal/config"
)

const resendAPIURL = "https://api.resend.com/emails"

// ResendNotifier sends plain-text email through the Resend API
type ResendNotifier struct {
	config config.ResendConfig
	apiURL string
	client *http.Client
}

// NewResendNotifier creates a new Resend notifier
func NewResendNotifier(cfg config.ResendConfig) *ResendNotifier {
	return &ResendNotifier{
		config: cfg,
		apiURL: resendAPIURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ResendEmailRequest represents the request structure for Resend API
type ResendEmailRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	Text    string      `json:"text"`
	Tags    []ResendTag `json:"tags,omitempty"`
}

// ResendTag represents a tag for email categorization
type ResendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents error response from Resend API
type ResendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (s *ResendNotifier) from() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

// Send delivers a message to a single recipient
func (s *ResendNotifier) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(ResendEmailRequest{
		From:    s.from(),
		To:      []string{to},
		Subject: subject,
		Text:    body,
		Tags:    []ResendTag{{Name: "category", Value: "ticketing"}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResp ResendErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil || errorResp.Message == "" {
			return fmt.Errorf("failed to send email, status: %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to send email: %s", errorResp.Message)
	}

	var response ResendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	log.Printf("Email sent to %s via Resend (id %s)", to, response.ID)
	return nil
}

// LogNotifier writes messages to the log instead of sending them
type LogNotifier struct{}

// Send logs the message
func (LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("Mock Email: %q to %s (%d bytes)", subject, to, len(body))
	return nil
}

// NewNotifier returns a Resend notifier when an API key is configured and a LogNotifier otherwise
func NewNotifier(cfg config.ResendConfig) Notifier {
	if cfg.APIKey == "" {
		log.Println("Email service: Using mock (no Resend API key provided)")
		return LogNotifier{}
	}
	log.Println("Email service: Using Resend API")
	return NewResendNotifier(cfg)
}
