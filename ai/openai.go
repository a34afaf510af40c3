package ai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

const temperature = 0.3

// OpenAI completes chat requests against the OpenAI API or any compatible
// endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a client. An empty apiKey yields a client whose calls
// fail with an UpstreamError, so the server can start without one.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	if apiKey == "" {
		return &OpenAI{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.client == nil {
		return "", &UpstreamError{Err: errors.New("OPENAI_API_KEY not set")}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Err: errors.New("model returned no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
