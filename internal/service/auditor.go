package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/prompts"
	"github.com/go-resty/resty/v2"
)

// Auditor analyzes a single photo for accessibility barriers.
// The pipeline treats any error as a per-item failure.
type Auditor interface {
	Analyze(ctx context.Context, imageURL string, wheelchairAccessible bool) (*domain.AuditOutcome, error)
}

// AuditorService calls an OpenAI-compatible vision chat endpoint and parses
// the model's strict-JSON answer into a domain.AuditOutcome.
type AuditorService struct {
	client   *resty.Client
	model    string
	endpoint string
}

// AuditorConfig holds configuration for the auditor service.
type AuditorConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewAuditorService creates a new auditor service.
func NewAuditorService(cfg *AuditorConfig) *AuditorService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &AuditorService{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// GetModel returns the model name being used.
func (s *AuditorService) GetModel() string {
	return s.model
}

// Chat Completion API request/response structures
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string, or []interface{} for user with images
}

type chatTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatImageContent struct {
	Type     string       `json:"type"`
	ImageURL chatImageURL `json:"image_url"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Analyze audits a single property photo.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageURL: publicly accessible photo URL.
//   - wheelchairAccessible: selects the wheelchair-focused prompt variant.
//
// Returns:
//   - *domain.AuditOutcome: parsed audit payload.
//   - error: non-nil on transport failure or malformed model output.
func (s *AuditorService) Analyze(ctx context.Context, imageURL string, wheelchairAccessible bool) (*domain.AuditOutcome, error) {
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []interface{}{
					chatTextContent{
						Type: "text",
						Text: prompts.AuditPrompt(wheelchairAccessible),
					},
					chatImageContent{
						Type: "image_url",
						ImageURL: chatImageURL{
							URL:    imageURL,
							Detail: "auto",
						},
					},
				},
			},
		},
		MaxTokens: 1024,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call audit API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("audit API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("audit API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from audit API (status: %d)", httpResp.StatusCode())
	}

	outcome, err := parseAuditOutcome(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit response: %w", err)
	}
	return outcome, nil
}

// parseAuditOutcome decodes the model's JSON answer, tolerating markdown
// code fences around the object.
func parseAuditOutcome(content string) (*domain.AuditOutcome, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var outcome domain.AuditOutcome
	if err := json.Unmarshal([]byte(trimmed), &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}
