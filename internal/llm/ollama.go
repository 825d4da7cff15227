package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// OllamaGateway implements the Gateway interface for Ollama local models
type OllamaGateway struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama chat API structures
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
	Think    bool            `json:"think"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64-encoded
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaGateway creates a new Ollama gateway
func NewOllamaGateway(config Config) (*OllamaGateway, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 2 * time.Minute // Local models can be slow on vision inputs
	}

	return &OllamaGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (g *OllamaGateway) Name() string {
	return "ollama"
}

// IsAvailable checks if the Ollama server is reachable
func (g *OllamaGateway) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/api/tags", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (request creation): %v\n", err)
		return false
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", g.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Chat issues a free-text completion at temperature 0.
func (g *OllamaGateway) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.chat(ctx, g.config.Model, systemPrompt, ollamaMessage{
		Role:    "user",
		Content: userPrompt,
	}, nil)
}

// ChatStructured constrains the response to the JSON schema generated from
// out's type via Ollama's format parameter, then unmarshals into out.
func (g *OllamaGateway) ChatStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	format, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	content, err := g.chat(ctx, g.config.Model, systemPrompt, ollamaMessage{
		Role:    "user",
		Content: userPrompt,
	}, format)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}
	return nil
}

// ChatVision issues a free-text completion over an attached image using the
// configured vision model.
func (g *OllamaGateway) ChatVision(ctx context.Context, systemPrompt, userPrompt string, image Attachment) (string, error) {
	visionModel := g.config.VisionModel
	if visionModel == "" {
		visionModel = g.config.Model
	}

	return g.chat(ctx, visionModel, systemPrompt, ollamaMessage{
		Role:    "user",
		Content: userPrompt,
		Images:  []string{base64.StdEncoding.EncodeToString(image.Data)},
	}, nil)
}

// chat performs a single non-streaming /api/chat round trip.
func (g *OllamaGateway) chat(ctx context.Context, model, systemPrompt string, user ollamaMessage, format json.RawMessage) (string, error) {
	reqBody := ollamaChatRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			user,
		},
		Stream:  false,
		Format:  format,
		Options: ollamaOptions{Temperature: 0},
		Think:   false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("ollama API error: status %d", resp.StatusCode)
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	content := strings.TrimSpace(chatResp.Message.Content)
	if content == "" {
		return "", fmt.Errorf("no content returned from model")
	}
	return content, nil
}
