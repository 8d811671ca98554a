package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, "req_123", http.StatusBadRequest, "invalid_request_error", "bad_request", "test message")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	if rid := w.Header().Get("X-Request-ID"); rid != "req_123" {
		t.Errorf("expected X-Request-ID req_123, got %s", rid)
	}

	var resp APIError
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Error.Message != "test message" {
		t.Errorf("expected message 'test message', got %q", resp.Error.Message)
	}
	if resp.Error.Type != "invalid_request_error" {
		t.Errorf("expected type 'invalid_request_error', got %q", resp.Error.Type)
	}
	if resp.Error.RequestID != "req_123" {
		t.Errorf("expected request_id 'req_123', got %q", resp.Error.RequestID)
	}
}

func TestWriteErrorWithTokens(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorWithTokens(w, "req_456", http.StatusInternalServerError, "server_error", "internal_error", "generation failed", 120)

	var resp APIError
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.TokensUsed != 120 {
		t.Errorf("expected tokens_used 120, got %d", resp.Error.TokensUsed)
	}
}

func TestWriteBudgetExceededError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteBudgetExceededError(w, "req_789", "out of tokens")

	if w.Code != http.StatusPaymentRequired {
		t.Errorf("expected status 402, got %d", w.Code)
	}

	var resp APIError
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "token_budget_exceeded" {
		t.Errorf("expected code 'token_budget_exceeded', got %q", resp.Error.Code)
	}
}
