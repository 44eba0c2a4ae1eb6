// Package mailer delivers rendered emails through a transactional mail
// provider, handling the provider's OAuth refresh-token flow.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/config"
	"github.com/Bivtor/cold-cold-cold/internal/retry"
)

var emailExpr = regexp.MustCompile(`^[a-zA-Z0-9._%+\-']+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender posts formatted messages to the provider's send endpoint. The OAuth
// token is cached process-wide and refreshed on expiry by the token source;
// the Sender owns that resource rather than any ambient singleton.
type Sender struct {
	cfg        config.MailConfig
	httpClient *http.Client
	tokens     oauth2.TokenSource
	policy     retry.Policy
}

// New wires a sender from configuration. Pass a nil httpClient for a default;
// the same client is used for the token endpoint and the send endpoint.
func New(cfg config.MailConfig, httpClient *http.Client) *Sender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	base := oauthCfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Sender{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     oauth2.ReuseTokenSource(nil, base),
		policy:     retry.DefaultPolicy,
	}
}

// Send validates the message locally, then posts it with retry on retryable
// provider failures only.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if err := s.validate(msg); err != nil {
		return err
	}
	_, err := retry.Do(ctx, s.policy, apperr.IsRetryable, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.sendOnce(ctx, msg)
	})
	return err
}

func (s *Sender) validate(msg Message) error {
	switch {
	case strings.TrimSpace(msg.To) == "":
		return apperr.New(apperr.CodeInvalidRecipient, "a recipient address is required", false)
	case !emailExpr.MatchString(strings.TrimSpace(msg.To)):
		return apperr.New(apperr.CodeInvalidRecipient, "the recipient address is not a valid email", false)
	case strings.TrimSpace(msg.Subject) == "":
		return apperr.New(apperr.CodeSend, "a subject is required", false)
	case strings.TrimSpace(msg.HTMLBody) == "":
		return apperr.New(apperr.CodeSend, "an email body is required", false)
	case strings.TrimSpace(s.cfg.FromEmail) == "" || !emailExpr.MatchString(strings.TrimSpace(s.cfg.FromEmail)):
		return apperr.New(apperr.CodeSend, "the sender address is not configured", false)
	case strings.TrimSpace(s.cfg.SendURL) == "":
		return apperr.New(apperr.CodeSend, "the mail provider send endpoint is not configured", false)
	}
	return nil
}

type sendPayload struct {
	FromAddress string `json:"fromAddress"`
	FromName    string `json:"fromName,omitempty"`
	ToAddress   string `json:"toAddress"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	TextContent string `json:"textContent,omitempty"`
	MailFormat  string `json:"mailFormat"`
}

type sendResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status string `json:"status"`
	} `json:"data"`
	Message string `json:"message"`
}

func (s *Sender) sendOnce(ctx context.Context, msg Message) error {
	token, err := s.tokens.Token()
	if err != nil {
		return apperr.Wrap(apperr.CodeMailAuth, "could not obtain a mail provider token", false, err)
	}

	payload, err := json.Marshal(sendPayload{
		FromAddress: s.cfg.FromEmail,
		FromName:    s.cfg.FromName,
		ToAddress:   msg.To,
		Subject:     msg.Subject,
		Content:     msg.HTMLBody,
		TextContent: msg.TextBody,
		MailFormat:  "html",
	})
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeMailUnavailable, "could not reach the mail provider", true, err)
	}
	defer resp.Body.Close()

	if statusErr := apperr.ClassifyMailStatus(resp.StatusCode); statusErr != nil {
		return statusErr
	}

	// Providers can bury a logical failure inside a 200 response.
	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
		if logicalFailure(decoded.Status) || logicalFailure(decoded.Data.Status) {
			reason := decoded.Message
			if reason == "" {
				reason = "the mail provider reported the message as undeliverable"
			}
			return apperr.New(apperr.CodeSend, reason, false)
		}
	}
	return nil
}

func logicalFailure(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "failed", "rejected", "bounced":
		return true
	}
	return false
}
