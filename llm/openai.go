package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator sends prompts as a single user message to the chat
// completions endpoint of OpenAI or a compatible server.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator wraps a configured go-openai client.
func NewOpenAIGenerator(client *openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: openAITemperature(req.Temperature),
		MaxTokens:   req.maxTokens(),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return nonEmpty(resp.Choices[0].Message.Content)
}

// openAITemperature converts to the request field. A zero temperature is
// omitted from the JSON body by go-openai, which makes the API fall back to
// 1.0, so it is sent as the smallest positive float32 instead.
func openAITemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
