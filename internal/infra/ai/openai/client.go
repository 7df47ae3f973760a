package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/TaylorDurden/rank-everything/internal/domain/ai"
	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
	"github.com/TaylorDurden/rank-everything/internal/infra/ai/parse"
	"github.com/TaylorDurden/rank-everything/internal/infra/ai/prompt"
)

const (
	maxTokens      = 4096
	temperature    = 0.3
	defaultTimeout = 60 * time.Second
)

// Client is the model gateway. It makes exactly one completion attempt per
// call, bounded by the configured timeout; any failure maps to ErrUpstream
// so the orchestrator can route to the fallback.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a gateway against any OpenAI-compatible endpoint.
// baseURL may be empty for the default provider.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model, timeout: timeout}
}

// Evaluate builds the prompt segments, invokes the completion endpoint and
// hands the raw text to the parser. Token usage is attached to the result.
func (c *Client) Evaluate(ctx context.Context, asset *assets.Asset, template *templates.Template, previous *evaluations.Evaluation) (*evaluations.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System(asset, template)},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User(asset, previous)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: empty completion", domai.ErrUpstream)
	}

	result, err := parse.Result(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	result.TokenUsage = resp.Usage.TotalTokens
	return result, nil
}
