package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"blog_post_generator/config"
	"blog_post_generator/generator"
	"blog_post_generator/pkg/logger"
	"blog_post_generator/pkg/tracer"
	"blog_post_generator/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config.yaml (optional)")
	envPath := flag.String("env", ".env", "dotenv file loaded into the environment before config")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides server.addr)")
	topic := flag.String("topic", "", "topic of the blog post (one-shot mode)")
	length := flag.Int("length", generator.DefaultLength, "maximum words requested, 100-2000 in steps of 100")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	if err := run(*configPath, *envPath, *serve, *addr, *topic, *length, *verbose); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, serve bool, addr, topic string, length int, verbose bool) error {
	dotenvErr := config.LoadDotenv(envPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.Observability.Logging.Level
	if verbose {
		level = "debug"
	}
	logger.Init(level, cfg.Observability.Logging.Format, os.Stderr)
	ctx := context.Background()
	if dotenvErr != nil {
		if errors.Is(dotenvErr, fs.ErrNotExist) {
			logger.Debug(ctx, "no .env file found", "path", envPath)
		} else {
			return dotenvErr
		}
	}

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	llm, closeLLM, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer closeLLM()

	agent, err := generator.NewAgent(llm)
	if err != nil {
		return err
	}

	if serve {
		listen := cfg.Server.Addr
		if addr != "" {
			listen = addr
		}
		if listen == "" {
			listen = ":8080"
		}
		return serveHTTP(agent, cfg, listen)
	}

	return generateOnce(ctx, agent, topic, generator.ClampLength(length), os.Stdout, os.Stderr)
}

// generateOnce writes the status line to status and only the generated text to out.
func generateOnce(ctx context.Context, agent *generator.Agent, topic string, length int, out, status io.Writer) error {
	if topic == "" {
		return nil
	}
	color.New(color.FgCyan).Fprintf(status, "Generating a blog post about %s with a maximum length of %d words...\n", topic, length)
	post, err := agent.Generate(ctx, topic, length)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, post.Text)
	return err
}

func serveHTTP(agent *generator.Agent, cfg config.Config, listen string) error {
	srv, err := server.New(agent, cfg)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:         listen,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info := agent.Info()
		logger.Info(gctx, "starting web server", "addr", listen, "provider", info.Provider, "model", info.Model)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down web server")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildLLM picks the backend named by cfg.Provider. The returned func releases it.
func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, func(), error) {
	settings := &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
	noop := func() {}
	switch cfg.Provider {
	case "gemini":
		llm, err := generator.NewGeminiLLMFromConfig(ctx, settings)
		if err != nil {
			return nil, nil, err
		}
		return llm, func() { _ = llm.Close() }, nil
	case "openai", "deepseek":
		// DeepSeek exposes an OpenAI-compatible endpoint; config validation requires base_url for it.
		llm, err := generator.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		return llm, noop, nil
	case "mock":
		return generator.MockLLM{}, noop, nil
	default:
		return nil, nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
