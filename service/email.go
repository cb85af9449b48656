package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// EmailService asks the mail API to send a stored certificate.
type EmailService struct {
	config     *config.EmailConfig
	httpClient *http.Client
}

// EmailRequest is the body posted to the mail API.
type EmailRequest struct {
	ReportID       string   `json:"reportId"`
	RecipientEmail string   `json:"recipientEmail"`
	CC             []string `json:"cc,omitempty"`
	CustomMessage  string   `json:"customMessage,omitempty"`
}

type EmailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EmailService{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ValidRecipient only checks for an '@'; the mail API does the real validation.
func ValidRecipient(email string) bool {
	return strings.Contains(strings.TrimSpace(email), "@")
}

// Send emails the certificate of req.ReportID. The report must already be
// saved so the mail API can find its document.
func (s *EmailService) Send(ctx context.Context, req EmailRequest) error {
	if !ValidRecipient(req.RecipientEmail) {
		return ErrInvalidEmail
	}
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)

	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if s.config.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result EmailResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w, status: %d", err, resp.StatusCode)
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("email API error: %s", result.Error)
	}

	logger.Info(ctx, "certificate emailed", "cc", len(req.CC))
	return nil
}
