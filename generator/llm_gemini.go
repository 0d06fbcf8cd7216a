package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"blog_post_generator/pkg/metrics"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash-8b"

// ErrNoContent is returned when a Gemini response carries no text.
var ErrNoContent = errors.New("gemini: response has no text content")

// GeminiLLM implements LLMClient on the Gemini API.
type GeminiLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiLLMFromConfig builds the client and attaches the persona and the
// generation config to the model.
func NewGeminiLLMFromConfig(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set GEMINI_API_KEY")
	}
	name := cfg.Model
	if name == "" {
		name = DefaultGeminiModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(name)
	configureModel(model, cfg.generation(), cfg.system())
	return &GeminiLLM{client: client, model: model, name: name}, nil
}

func configureModel(m *genai.GenerativeModel, gc GenerationConfig, system string) {
	m.SetTemperature(gc.Temperature)
	m.SetTopP(gc.TopP)
	m.SetTopK(gc.TopK)
	m.SetMaxOutputTokens(gc.MaxOutputTokens)
	m.ResponseMIMEType = gc.ResponseMIMEType
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
}

// Complete starts a new chat with no history and sends prompt as its only message.
func (g *GeminiLLM) Complete(ctx context.Context, prompt string) (string, error) {
	cs := g.model.StartChat()
	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if u := resp.UsageMetadata; u != nil {
		metrics.ObserveTokens("gemini", g.name, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
	}
	return responseText(resp)
}

func (g *GeminiLLM) Info() ModelInfo {
	return ModelInfo{Provider: "gemini", Model: g.name}
}

// Close releases the underlying connection.
func (g *GeminiLLM) Close() error {
	return g.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoContent
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return "", ErrNoContent
	}
	var sb strings.Builder
	found := false
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
			found = true
		}
	}
	if !found {
		return "", ErrNoContent
	}
	return sb.String(), nil
}
