package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"claimpilot/internal/model"
)

func TestSchemaName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{&model.MedicalReportFields{}, "medicalreportfields"},
		{model.PoliceReportFields{}, "policereportfields"},
		{&struct{}{}, "result"},
	}
	for _, tt := range tests {
		if got := schemaName(tt.in); got != tt.want {
			t.Errorf("schemaName(%T) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewOpenAIGateway_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIGateway(Config{}); err == nil {
		t.Fatal("Expected error without API key, got nil")
	}
}

func TestOpenAIGateway_Chat(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "APPROVE"}},
			},
		})
	}))
	defer server.Close()

	g, err := NewOpenAIGateway(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := g.Chat(context.Background(), "system prompt", "decide")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp != "APPROVE" {
		t.Errorf("Expected APPROVE, got %q", resp)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("Expected configured model, got %s", gotReq.Model)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("Expected temperature 0, got %v", gotReq.Temperature)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("Expected system+user messages, got %v", gotReq.Messages)
	}
}

func TestOpenAIGateway_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	g, _ := NewOpenAIGateway(Config{APIKey: "sk-test", BaseURL: server.URL})
	if _, err := g.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("Expected error for empty choices, got nil")
	}
}
