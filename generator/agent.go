package generator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"blog_post_generator/pkg/logger"
	"blog_post_generator/pkg/metrics"
	"blog_post_generator/pkg/tracer"
)

// Agent turns a topic and a length into one backend call.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Info reports the backend the agent calls.
func (a *Agent) Info() ModelInfo {
	return a.llm.Info()
}

// Generate builds the prompt for topic and length and sends it as a fresh
// single-turn exchange. An empty topic returns ErrEmptyTopic and makes no call.
// Backend errors are returned as-is.
func (a *Agent) Generate(ctx context.Context, topic string, length int) (Post, error) {
	if topic == "" {
		return Post{}, ErrEmptyTopic
	}

	info := a.llm.Info()
	prompt := BuildPrompt(topic, length)

	ctx, span := tracer.Start(ctx, "generator.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", info.Provider),
		attribute.String("llm.model", info.Model),
		attribute.Int("post.length", length),
	)

	logger.Debug(ctx, "generating post", "provider", info.Provider, "model", info.Model, "length", length)
	start := time.Now()
	text, err := a.llm.Complete(ctx, prompt)
	metrics.LLMCallDuration.WithLabelValues(info.Provider, info.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(info.Provider, info.Model, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Post{}, err
	}
	metrics.LLMCallTotal.WithLabelValues(info.Provider, info.Model, "ok").Inc()

	post := newPost(topic, length, prompt, text)
	metrics.PostWordCount.WithLabelValues(info.Provider).Observe(float64(post.WordCount))
	if post.WordCount > length {
		logger.Debug(ctx, "post longer than requested", "requested", length, "words", post.WordCount)
	}
	logger.Info(ctx, "post generated", "provider", info.Provider, "words", post.WordCount,
		"elapsed", time.Since(start).String())
	return post, nil
}
