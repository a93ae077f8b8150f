package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/linkdigest/internal/retry"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

// CompletionAPI is the subset of the go-openai client used for plain completions.
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, req openai.CompletionRequest) (openai.CompletionResponse, error)
}

// TextCompleter talks to a local OpenAI-compatible /completions endpoint.
type TextCompleter struct {
	api       CompletionAPI
	model     string
	maxTokens int
	policy    retry.Policy
}

func NewTextCompleter(api CompletionAPI, model string, maxTokens int, policy retry.Policy) *TextCompleter {
	return &TextCompleter{api: api, model: model, maxTokens: maxTokens, policy: policy}
}

func (c *TextCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	completionReq := openai.CompletionRequest{
		Model:       c.model,
		Prompt:      req.Prompt + "\n\n" + req.Query,
		MaxTokens:   c.maxTokens,
		Temperature: temperature(req.Temperature),
	}

	resp, err := retry.Do(ctx, c.policy, IsTransient, func() (openai.CompletionResponse, error) {
		return c.api.CreateCompletion(ctx, completionReq)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Text, nil
}
