package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// RenderService calls the external document-generation API.
type RenderService struct {
	config     *config.RenderConfig
	httpClient *http.Client
}

// RenderRequest is the body posted to the render endpoint.
type RenderRequest struct {
	FormData   model.CertificatePayload `json:"formData"`
	TemplateID string                   `json:"templateId"`
}

// RenderResponse is the render endpoint's answer. Deployments have returned
// the document URL under several names.
type RenderResponse struct {
	Success     bool   `json:"success"`
	PDFURL      string `json:"pdfUrl,omitempty"`
	PDFURLSnake string `json:"pdf_url,omitempty"`
	URL         string `json:"url,omitempty"`
	Data        *struct {
		PDFURL string `json:"pdfUrl,omitempty"`
	} `json:"data,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DocumentURL returns the first URL the response carries.
func (r *RenderResponse) DocumentURL() string {
	var nested string
	if r.Data != nil {
		nested = r.Data.PDFURL
	}
	return firstNonEmpty(r.PDFURL, r.PDFURLSnake, r.URL, nested, r.DownloadURL)
}

func NewRenderService(cfg *config.RenderConfig) *RenderService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RenderService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Render sends the payload and returns the temporary document URL. Every
// failure is a *RenderError; nothing is retried.
func (s *RenderService) Render(ctx context.Context, payload model.CertificatePayload) (string, error) {
	jsonData, err := json.Marshal(RenderRequest{
		FormData:   payload,
		TemplateID: s.config.TemplateID,
	})
	if err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to send request: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	var result RenderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", &RenderError{Message: fmt.Sprintf("render service returned status %d", resp.StatusCode)}
		}
		return "", &RenderError{Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	// An error message fails the render even when success is set.
	if !result.Success || result.Error != "" || resp.StatusCode >= http.StatusBadRequest {
		msg := result.Error
		if msg == "" {
			msg = ErrRenderFailed.Error()
		}
		return "", &RenderError{Message: msg}
	}

	url := result.DocumentURL()
	if url == "" {
		return "", &RenderError{Message: "render service returned no document URL"}
	}

	logger.Debug(ctx, "certificate rendered", "status", resp.StatusCode)
	return url, nil
}
