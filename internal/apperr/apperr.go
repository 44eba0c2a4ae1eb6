// Package apperr defines the closed set of application error kinds shared by
// the scraper, generator, mailer and storage layers. Low-level failures are
// classified at each service boundary; nothing crosses into the HTTP layer as
// a raw error.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Code identifies one error kind from the closed taxonomy.
type Code string

// Scraping kinds.
const (
	CodeTimeout       Code = "TIMEOUT_ERROR"
	CodeInvalidURL    Code = "INVALID_URL"
	CodeAccessBlocked Code = "ACCESS_BLOCKED"
	CodeNetwork       Code = "NETWORK_ERROR"
	CodeParsing       Code = "PARSING_ERROR"
	CodeScraping      Code = "SCRAPING_ERROR"
)

// Generation kinds.
const (
	CodeRateLimit       Code = "RATE_LIMIT"
	CodeAuth            Code = "AUTH_ERROR"
	CodeInvalidResponse Code = "INVALID_RESPONSE"
	CodeAPI             Code = "API_ERROR"
)

// Mail kinds.
const (
	CodeMailAuth         Code = "MAIL_AUTH_ERROR"
	CodeSend             Code = "SEND_ERROR"
	CodeInvalidRecipient Code = "INVALID_RECIPIENT"
	CodeMailRateLimit    Code = "MAIL_RATE_LIMIT"
	CodeMailUnavailable  Code = "MAIL_UNAVAILABLE"
)

// Storage kind.
const CodeDatabase Code = "DATABASE_ERROR"

// Error is a classified application error carrying a user-facing message,
// a retryability flag and an optional suggested remediation.
type Error struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	Suggestion string `json:"suggestion,omitempty"`
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// WithSuggestion returns a copy carrying the given remediation hint.
func (e *Error) WithSuggestion(s string) *Error {
	clone := *e
	clone.Suggestion = s
	return &clone
}

// New builds a classified error without an underlying cause.
func New(code Code, message string, retryable bool) *Error {
	return &Error{Code: code, Message: message, Retryable: retryable}
}

// Wrap builds a classified error around a lower-level cause.
func Wrap(code Code, message string, retryable bool, cause error) *Error {
	return &Error{Code: code, Message: message, Retryable: retryable, cause: cause}
}

// From extracts a classified error from err, or nil when err carries none.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the taxonomy code of err, or the empty string for
// unclassified errors.
func CodeOf(err error) Code {
	if appErr := From(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

// IsRetryable reports whether err was classified as worth retrying.
// Unclassified errors are not retried.
func IsRetryable(err error) bool {
	if appErr := From(err); appErr != nil {
		return appErr.Retryable
	}
	return false
}

// ClassifyScrape maps a low-level fetch or parse failure into the scraping
// portion of the taxonomy.
func ClassifyScrape(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr := From(err); appErr != nil {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(CodeTimeout, "the website took too long to respond", true, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(CodeTimeout, "the website took too long to respond", true, err)
		}
		return Wrap(CodeNetwork, "could not reach the website", true, err)
	}
	return Wrap(CodeScraping, "could not extract data from the website", false, err)
}

// ClassifyScrapeStatus maps an HTTP status from a scraped site into the taxonomy.
func ClassifyScrapeStatus(status int) *Error {
	switch {
	case status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return New(CodeAccessBlocked, fmt.Sprintf("the website blocked automated access (status %d)", status), true)
	case status == http.StatusNotFound:
		return New(CodeParsing, "the page was not found", false)
	case status >= 500:
		return New(CodeNetwork, fmt.Sprintf("the website returned a server error (status %d)", status), true)
	case status >= 400:
		return New(CodeScraping, fmt.Sprintf("the website rejected the request (status %d)", status), false)
	}
	return nil
}

// ClassifyGeneration maps an LLM endpoint failure into the generation portion
// of the taxonomy.
func ClassifyGeneration(status int, providerMessage string) *Error {
	msg := providerMessage
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = "the generation service rejected the API key"
		}
		return New(CodeAuth, msg, false)
	case http.StatusTooManyRequests:
		if msg == "" {
			msg = "the generation service is rate limiting requests"
		}
		return New(CodeRateLimit, msg, true)
	}
	if status >= 500 {
		if msg == "" {
			msg = "the generation service is temporarily unavailable"
		}
		return New(CodeAPI, msg, true)
	}
	if msg == "" {
		msg = fmt.Sprintf("the generation service returned status %d", status)
	}
	return New(CodeAPI, msg, false)
}

// ClassifyMailStatus maps a mail provider HTTP status into the taxonomy.
func ClassifyMailStatus(status int) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return New(CodeMailAuth, "the mail provider rejected the credentials", false)
	case status == http.StatusForbidden:
		return New(CodeSend, "the mail provider refused to send this message", false)
	case status == http.StatusTooManyRequests:
		return New(CodeMailRateLimit, "the mail provider is rate limiting sends", true)
	case status >= 500:
		return New(CodeMailUnavailable, fmt.Sprintf("the mail provider is unavailable (status %d)", status), true)
	case status >= 400:
		return New(CodeSend, fmt.Sprintf("the mail provider rejected the message (status %d)", status), false)
	}
	return nil
}

// Database wraps a storage failure.
func Database(op string, cause error) *Error {
	return Wrap(CodeDatabase, fmt.Sprintf("database operation failed: %s", op), false, cause)
}

// HTTPStatus maps a taxonomy code to the response status handlers should use.
func HTTPStatus(err error) int {
	appErr := From(err)
	if appErr == nil {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeInvalidURL, CodeInvalidRecipient:
		return http.StatusBadRequest
	case CodeAuth, CodeMailAuth:
		return http.StatusUnauthorized
	case CodeRateLimit, CodeMailRateLimit:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeAccessBlocked, CodeNetwork, CodeAPI, CodeMailUnavailable:
		return http.StatusBadGateway
	case CodeParsing, CodeScraping, CodeInvalidResponse, CodeSend:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
