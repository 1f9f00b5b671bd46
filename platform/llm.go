package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4.1-nano"

// ChatMessage is one role-tagged turn of a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMClient wraps the OpenAI-compatible completion API. Built once in main
// and handed to every service that talks to the model.
type LLMClient struct {
	client *openai.Client
	model  string
}

func NewLLMClient() *LLMClient {
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &LLMClient{
		client: openai.NewClient(
			option.WithBaseURL(os.Getenv("LLM_BASE_URL")),
			option.WithAPIKey(os.Getenv("LLM_API_KEY")),
		),
		model: model,
	}
}

// Complete sends the message sequence and returns the single completion
// string. No streaming.
func (c *LLMClient) Complete(ctx context.Context, messages []ChatMessage, maxTokens int64, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    openai.F([]openai.ChatCompletionMessageParamUnion{}),
		Model:       openai.F(c.model),
		MaxTokens:   openai.F(maxTokens),
		Temperature: openai.F(temperature),
	}
	for _, message := range messages {
		var content any = message.Content
		params.Messages.Value = append(params.Messages.Value, openai.ChatCompletionMessageParam{
			Role:    openai.F(openai.ChatCompletionMessageParamRole(message.Role)),
			Content: openai.F(content),
		})
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
