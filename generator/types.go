package generator

import "errors"

// ErrEmptyTopic is returned, without contacting the backend, when no topic was given.
var ErrEmptyTopic = errors.New("topic is empty")

// Post is one generated blog post. Text is exactly what the backend returned;
// Title and WordCount are read from it and never alter it.
type Post struct {
	Topic     string `json:"topic"`
	Length    int    `json:"length"`
	Prompt    string `json:"prompt"`
	Title     string `json:"title,omitempty"`
	WordCount int    `json:"word_count"`
	Text      string `json:"text"`
}

// GenerationConfig holds the sampling parameters sent with every call.
type GenerationConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// DefaultGenerationConfig is the fixed configuration used for the life of the process.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:      1,
	TopP:             0.95,
	TopK:             40,
	MaxOutputTokens:  8192,
	ResponseMIMEType: "text/plain",
}
