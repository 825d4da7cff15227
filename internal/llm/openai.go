package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// OpenAIGateway implements the Gateway interface for OpenAI-compatible APIs
type OpenAIGateway struct {
	client *openai.Client
	config Config
}

// NewOpenAIGateway creates a new OpenAI gateway
func NewOpenAIGateway(config Config) (*OpenAIGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (g *OpenAIGateway) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (g *OpenAIGateway) IsAvailable(ctx context.Context) bool {
	_, err := g.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Chat issues a free-text completion at temperature 0.
func (g *OpenAIGateway) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model(),
		Messages:    chatMessages(systemPrompt, userPrompt),
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	return firstChoice(resp)
}

// ChatStructured issues a completion constrained to the JSON schema generated
// from out's type, then unmarshals the response into out.
func (g *OpenAIGateway) ChatStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	ctx, cancel := g.callContext(ctx)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model(),
		Messages:    chatMessages(systemPrompt, userPrompt),
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName(out),
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("openai structured chat: %w", err)
	}

	content, err := firstChoice(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}
	return nil
}

// ChatVision issues a free-text completion over an attached image.
func (g *OpenAIGateway) ChatVision(ctx context.Context, systemPrompt, userPrompt string, image Attachment) (string, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	dataURI := fmt.Sprintf("data:%s;base64,%s", image.MIME, base64.StdEncoding.EncodeToString(image.Data))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.visionModel(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: userPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai vision chat: %w", err)
	}

	return firstChoice(resp)
}

func (g *OpenAIGateway) model() string {
	if g.config.Model != "" {
		return g.config.Model
	}
	return openai.GPT4oMini
}

func (g *OpenAIGateway) visionModel() string {
	if g.config.VisionModel != "" {
		return g.config.VisionModel
	}
	return g.model()
}

func (g *OpenAIGateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(g.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(ctx, timeout)
}

func chatMessages(systemPrompt, userPrompt string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}
}

func firstChoice(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return content, nil
}

// schemaName derives a schema label from out's concrete type.
func schemaName(out any) string {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "result"
	}
	return strings.ToLower(t.Name())
}
