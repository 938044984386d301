package api

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("agentlens api: %s (status %d, request %s)", e.Message, e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("agentlens api: %s (status %d)", e.Message, e.StatusCode)
}

// Retryable reports whether the failure is worth a later re-attempt.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func apiErrorFrom(resp *resty.Response) *APIError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = sonic.Unmarshal(resp.Body(), &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    msg,
		RequestID:  resp.Request.Header.Get(headerRequestID),
	}
}
