package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

func TestOpenAIAdapter_Complete(t *testing.T) {
	var gotBody openAIRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "m-1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "the answer"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(config.ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"}, srv.Client())

	temp := 0.4
	result, err := adapter.Complete(context.Background(), "m-1",
		[]types.ChatMessage{{Role: "user", Content: "q"}}, GenerateOptions{Temperature: &temp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "the answer" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.TokensUsed != 15 {
		t.Errorf("expected 15 tokens, got %d", result.TokensUsed)
	}
	if gotBody.Model != "m-1" || len(gotBody.Messages) != 1 {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.4 {
		t.Error("temperature not forwarded")
	}
}

func TestOpenAIAdapter_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(config.ProviderConfig{BaseURL: srv.URL}, srv.Client())
	_, err := adapter.Complete(context.Background(), "m-1", nil, GenerateOptions{})
	if err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestAnthropicAdapter_Complete(t *testing.T) {
	var gotBody anthropicRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("x-api-key"); key != "test-key" {
			t.Errorf("unexpected api key header %q", key)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "claude-x",
			"content": [{"type": "text", "text": "hello"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 8, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	adapter := NewAnthropicAdapter(config.ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"}, srv.Client())

	result, err := adapter.Complete(context.Background(), "claude-x", []types.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "q"},
	}, GenerateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.TokensUsed != 12 {
		t.Errorf("expected 12 tokens, got %d", result.TokensUsed)
	}
	// System prompt rides out of band.
	if gotBody.System != "be brief" {
		t.Errorf("expected system field, got %q", gotBody.System)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("system message must not appear in messages: %+v", gotBody.Messages)
	}
	if gotBody.MaxTokens != anthropicDefaultMaxTokens {
		t.Errorf("expected default max_tokens, got %d", gotBody.MaxTokens)
	}
}
