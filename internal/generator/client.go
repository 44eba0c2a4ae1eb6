// Package generator builds prompts and calls the LLM messages endpoint for
// email body generation, subject lines and feedback-driven refinement.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/config"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/retry"
)

const (
	bodyMaxTokens    = 1024
	subjectMaxTokens = 64
	temperature      = 0.7
	apiVersion       = "2023-06-01"
)

// Client talks to an Anthropic-style messages endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	policy     retry.Policy
}

// New builds a generation client from configuration. Pass a nil httpClient to
// use a default with a sane timeout.
func New(cfg config.LLMConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: httpClient,
		policy:     retry.DefaultPolicy,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type completionResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateEmail produces an outreach email body from the assembled prompt.
// The subject line is generated separately.
func (c *Client) GenerateEmail(ctx context.Context, req dto.GenerateRequest) (string, error) {
	if strings.TrimSpace(req.BusinessContext) == "" && req.ScrapedData == nil && req.ManualContent == "" {
		return "", apperr.New(apperr.CodeAPI, "business context is required to generate an email", false)
	}
	return c.complete(ctx, buildEmailPrompt(req), bodyMaxTokens)
}

// GenerateSubject produces a short subject line for a generated body.
func (c *Client) GenerateSubject(ctx context.Context, body, businessName string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", apperr.New(apperr.CodeAPI, "an email body is required to generate a subject", false)
	}
	subject, err := c.complete(ctx, buildSubjectPrompt(body, businessName), subjectMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(subject), `"`), nil
}

// RefineEmail rewrites a previously generated body according to free-text
// feedback, with the same retry discipline as generation.
func (c *Client) RefineEmail(ctx context.Context, original, feedback string) (string, error) {
	if strings.TrimSpace(original) == "" || strings.TrimSpace(feedback) == "" {
		return "", apperr.New(apperr.CodeAPI, "both the original email and feedback are required", false)
	}
	return c.complete(ctx, buildRefinePrompt(original, feedback), bodyMaxTokens)
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return retry.Do(ctx, c.policy, apperr.IsRetryable, func(ctx context.Context) (string, error) {
		return c.completeOnce(ctx, prompt, maxTokens)
	})
}

func (c *Client) completeOnce(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeAPI, "could not reach the generation service", true, err)
	}
	defer resp.Body.Close()

	var decoded completionResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerMsg := ""
		if decodeErr == nil && decoded.Error != nil {
			providerMsg = decoded.Error.Message
		}
		return "", apperr.ClassifyGeneration(resp.StatusCode, providerMsg)
	}
	if decodeErr != nil {
		return "", apperr.Wrap(apperr.CodeInvalidResponse, "the generation service returned an unreadable response", false, decodeErr)
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", apperr.New(apperr.CodeInvalidResponse, "the generation service returned no text", false)
	}
	return result, nil
}
