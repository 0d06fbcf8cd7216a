package generator

import (
	"context"
	"strings"
)

// MockLLM is a local stand-in that never calls a remote model.
type MockLLM struct{}

func (MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Sample post\n\n")
	sb.WriteString("This text was produced locally without calling a text-generation service.\n\n")
	sb.WriteString("## Request\n\n")
	sb.WriteString("> ")
	sb.WriteString(prompt)
	sb.WriteString("\n")
	return sb.String(), nil
}

func (MockLLM) Info() ModelInfo {
	return ModelInfo{Provider: "mock", Model: "mock"}
}
