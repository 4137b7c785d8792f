package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/willowyoga/studiobooking/config"
)

type HTTPMailer struct {
	baseURL     string
	apiKey      string
	fromAddress string
	fromName    string
	httpClient  *http.Client
}

// NewHTTPMailer creates an email client for the transactional mail API
func NewHTTPMailer(cfg *config.Mailer) *HTTPMailer {
	return &HTTPMailer{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
	}
}

type sendRequest struct {
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTMLBody    string `json:"html_body"`
}

// SendEmail delivers one transactional email
func (m *HTTPMailer) SendEmail(to, subject, htmlBody string) error {
	payload, err := json.Marshal(sendRequest{
		FromAddress: m.fromAddress,
		FromName:    m.fromName,
		To:          to,
		Subject:     subject,
		HTMLBody:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequest("POST", m.baseURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailer error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
