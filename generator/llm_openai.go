package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"blog_post_generator/pkg/metrics"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
// Top-k has no counterpart in that API and is not sent.
type OpenAILLM struct {
	provider string
	model    string
	system   string
	gen      GenerationConfig
	client   openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set the variable named by llm.api_key_env")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	// The SDK retries by default; failures are surfaced on the first attempt.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	return &OpenAILLM{
		provider: provider,
		model:    cfg.Model,
		system:   cfg.system(),
		gen:      cfg.generation(),
		client:   openai.NewClient(opts...),
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.system),
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(float64(o.gen.Temperature)),
		TopP:                openai.Float(float64(o.gen.TopP)),
		MaxCompletionTokens: openai.Int(int64(o.gen.MaxOutputTokens)),
	})
	if err != nil {
		return "", err
	}
	metrics.ObserveTokens(o.provider, o.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAILLM) Info() ModelInfo {
	return ModelInfo{Provider: o.provider, Model: o.model}
}
