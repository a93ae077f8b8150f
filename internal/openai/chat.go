package openai

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/linkdigest/internal/retry"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

// ChatAPI is the subset of the go-openai client used for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatCompleter asks a hosted chat model. The composed prompt is the system
// message and the query is the user message.
type ChatCompleter struct {
	api    ChatAPI
	model  string
	policy retry.Policy
}

func NewChatCompleter(api ChatAPI, model string, policy retry.Policy) *ChatCompleter {
	return &ChatCompleter{api: api, model: model, policy: policy}
}

func (c *ChatCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Query},
		},
		Temperature: temperature(req.Temperature),
	}

	resp, err := retry.Do(ctx, c.policy, IsTransient, func() (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(ctx, chatReq)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// temperature maps a requested temperature onto go-openai's float32 field.
// The field is omitempty, so a literal 0 is sent as the smallest positive
// value. Unset stays 0 and lets the server pick.
func temperature(t *float64) float32 {
	if t == nil {
		return 0
	}
	if *t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(*t)
}
