package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func ollamaServer(t *testing.T, handler func(req ollamaChatRequest) ollamaChatResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(handler(req))
	}))
}

func TestOllamaGateway_Chat(t *testing.T) {
	var got ollamaChatRequest
	server := ollamaServer(t, func(req ollamaChatRequest) ollamaChatResponse {
		got = req
		return ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: "  2  "}, Done: true}
	})
	defer server.Close()

	g, err := NewOllamaGateway(Config{BaseURL: server.URL, Model: "qwen3:8b"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := g.Chat(context.Background(), "system prompt", "classify this")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp != "2" {
		t.Errorf("Expected trimmed content, got %q", resp)
	}

	if got.Model != "qwen3:8b" {
		t.Errorf("Expected configured model, got %s", got.Model)
	}
	if got.Stream {
		t.Error("Expected streaming disabled")
	}
	if got.Think {
		t.Error("Expected thinking disabled")
	}
	if got.Options.Temperature != 0 {
		t.Errorf("Expected temperature 0, got %v", got.Options.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("Expected system+user messages, got %v", got.Messages)
	}
}

func TestOllamaGateway_ChatStructured(t *testing.T) {
	var got ollamaChatRequest
	server := ollamaServer(t, func(req ollamaChatRequest) ollamaChatResponse {
		got = req
		return ollamaChatResponse{Message: ollamaMessage{Content: `{"identifier": "A", "short_explanation": "trip"}`}, Done: true}
	})
	defer server.Close()

	g, err := NewOllamaGateway(Config{BaseURL: server.URL, Model: "qwen3:8b"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var out struct {
		Identifier       string `json:"identifier"`
		ShortExplanation string `json:"short_explanation"`
	}
	if err := g.ChatStructured(context.Background(), "system", "pick a section", &out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Identifier != "A" {
		t.Errorf("Expected identifier A, got %q", out.Identifier)
	}

	// The format field carries the JSON schema for the output type.
	if len(got.Format) == 0 {
		t.Fatal("Expected schema in format field")
	}
	if !strings.Contains(string(got.Format), "identifier") {
		t.Errorf("Expected schema to name the output fields, got %s", got.Format)
	}
}

func TestOllamaGateway_ChatVision(t *testing.T) {
	var got ollamaChatRequest
	server := ollamaServer(t, func(req ollamaChatRequest) ollamaChatResponse {
		got = req
		return ollamaChatResponse{Message: ollamaMessage{Content: "SIGNATURE"}, Done: true}
	})
	defer server.Close()

	g, err := NewOllamaGateway(Config{BaseURL: server.URL, Model: "qwen3:8b", VisionModel: "qwen2.5vl:7b"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := g.ChatVision(context.Background(), "system", "any signature?", Attachment{Data: []byte("img"), MIME: "image/png"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp != "SIGNATURE" {
		t.Errorf("Expected SIGNATURE, got %q", resp)
	}
	if got.Model != "qwen2.5vl:7b" {
		t.Errorf("Expected vision model, got %s", got.Model)
	}
	if len(got.Messages) != 2 || len(got.Messages[1].Images) != 1 {
		t.Fatalf("Expected user message with one image, got %v", got.Messages)
	}
	if got.Messages[1].Images[0] != "aW1n" { // base64("img")
		t.Errorf("Expected base64 image payload, got %s", got.Messages[1].Images[0])
	}
}

func TestOllamaGateway_EmptyContent(t *testing.T) {
	server := ollamaServer(t, func(req ollamaChatRequest) ollamaChatResponse {
		return ollamaChatResponse{Message: ollamaMessage{Content: "   "}, Done: true}
	})
	defer server.Close()

	g, _ := NewOllamaGateway(Config{BaseURL: server.URL, Model: "m"})
	if _, err := g.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("Expected error for empty content, got nil")
	}
}

func TestOllamaGateway_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	g, _ := NewOllamaGateway(Config{BaseURL: server.URL, Model: "missing"})
	_, err := g.Chat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected API error surfaced, got %v", err)
	}
}

func TestOllamaGateway_IsAvailable(t *testing.T) {
	server := ollamaServer(t, func(req ollamaChatRequest) ollamaChatResponse {
		return ollamaChatResponse{}
	})
	defer server.Close()

	g, _ := NewOllamaGateway(Config{BaseURL: server.URL})
	if !g.IsAvailable(context.Background()) {
		t.Error("Expected ollama server to be available")
	}

	server.Close()
	if g.IsAvailable(context.Background()) {
		t.Error("Expected closed server to be unavailable")
	}
}
