package generator

import "context"

// LLMClient is a text-generation backend. The persona and GenerationConfig
// are fixed when the client is built; Complete sends one single-turn message.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Info() ModelInfo
}

// ModelInfo names the backend for logs and metrics.
type ModelInfo struct {
	Provider string
	Model    string
}

// LLMSettings is the construction input shared by the implementations.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Empty means SystemInstruction.
	System string
	// Zero value means DefaultGenerationConfig.
	Generation GenerationConfig
}

func (s *LLMSettings) system() string {
	if s.System == "" {
		return SystemInstruction
	}
	return s.System
}

func (s *LLMSettings) generation() GenerationConfig {
	if s.Generation == (GenerationConfig{}) {
		return DefaultGenerationConfig
	}
	return s.Generation
}
