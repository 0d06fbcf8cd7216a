package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"blog_post_generator/config"
	"blog_post_generator/generator"
)

type recordingLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   bool
}

func (r *recordingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.reply, r.err
}

func (r *recordingLLM) Info() generator.ModelInfo {
	return generator.ModelInfo{Provider: "fake", Model: "fake-1"}
}

func (r *recordingLLM) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Name: "blog-post-generator"},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
}

var _ = Describe("Server", func() {
	var (
		llm     *recordingLLM
		cfg     config.Config
		handler http.Handler
	)

	BeforeEach(func() {
		llm = &recordingLLM{reply: "# Grow Your Own\n\nGardening is **rewarding**.\n\n<script>alert(1)</script>\n"}
		cfg = testConfig()
	})

	JustBeforeEach(func() {
		agent, err := generator.NewAgent(llm)
		Expect(err).NotTo(HaveOccurred())
		srv, err := New(agent, cfg)
		Expect(err).NotTo(HaveOccurred())
		handler = srv.Routes()
	})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	page := func(query url.Values) *httptest.ResponseRecorder {
		return do(httptest.NewRequest(http.MethodGet, "/?"+query.Encode(), nil))
	}

	It("rejects a nil agent", func() {
		_, err := New(nil, cfg)
		Expect(err).To(HaveOccurred())
	})

	Describe("GET /", func() {
		It("renders the form with the length control and makes no call without a topic", func() {
			rec := page(url.Values{})
			Expect(rec.Code).To(Equal(http.StatusOK))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring("<h1>Blog Post Generator AI</h1>"))
			Expect(body).To(ContainSubstring(`type="range"`))
			Expect(body).To(ContainSubstring(`min="100"`))
			Expect(body).To(ContainSubstring(`max="2000"`))
			Expect(body).To(ContainSubstring(`step="100"`))
			Expect(body).To(ContainSubstring(`value="500"`))
			Expect(body).NotTo(ContainSubstring("Generating a blog post"))
			Expect(body).NotTo(ContainSubstring(`<article id="post">`))
			Expect(llm.calls()).To(BeEmpty())
		})

		It("generates and renders the post for gardening at 500 words", func() {
			rec := page(url.Values{"topic": {"gardening"}, "length": {"500"}})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(llm.calls()).To(Equal([]string{
				"Generate a blog post about 'gardening' with a maximum of 500 words.",
			}))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring("Generating a blog post about <strong>gardening</strong> with a maximum length of 500 words..."))
			Expect(body).To(ContainSubstring("<h1>Grow Your Own</h1>"))
			Expect(body).To(ContainSubstring("<strong>rewarding</strong>"))
			Expect(body).To(ContainSubstring("<title>Grow Your Own · Blog Post Generator AI</title>"))
			Expect(body).NotTo(ContainSubstring("<script>alert(1)</script>"))
		})

		It("clamps out-of-range lengths before building the prompt", func() {
			page(url.Values{"topic": {"tea"}, "length": {"5000"}})
			page(url.Values{"topic": {"tea"}, "length": {"20"}})
			page(url.Values{"topic": {"tea"}, "length": {"not-a-number"}})
			Expect(llm.calls()).To(Equal([]string{
				"Generate a blog post about 'tea' with a maximum of 2000 words.",
				"Generate a blog post about 'tea' with a maximum of 100 words.",
				"Generate a blog post about 'tea' with a maximum of 500 words.",
			}))
		})

		It("escapes the topic in the page", func() {
			rec := page(url.Values{"topic": {"<b>x</b>"}})
			Expect(rec.Body.String()).To(ContainSubstring("&lt;b&gt;x&lt;/b&gt;"))
		})

		Context("when the backend fails", func() {
			BeforeEach(func() {
				llm.err = errors.New("googleapi: Error 403: API key not valid")
			})

			It("shows the failure and no generated text", func() {
				rec := page(url.Values{"topic": {"gardening"}})
				Expect(rec.Code).To(Equal(http.StatusBadGateway))
				body := rec.Body.String()
				Expect(body).To(ContainSubstring("Generation failed."))
				Expect(body).To(ContainSubstring("googleapi: Error 403: API key not valid"))
				Expect(body).NotTo(ContainSubstring(`<article id="post">`))
			})

			It("keeps serving later requests", func() {
				page(url.Values{"topic": {"gardening"}})
				llm.err = nil
				rec := page(url.Values{"topic": {"gardening"}})
				Expect(rec.Code).To(Equal(http.StatusOK))
			})
		})

		Context("when llm.timeout is set", func() {
			BeforeEach(func() {
				llm.block = true
				cfg.LLM.Timeout = 20 * time.Millisecond
			})

			It("gives up after the timeout", func() {
				rec := page(url.Values{"topic": {"slow"}})
				Expect(rec.Code).To(Equal(http.StatusBadGateway))
				Expect(rec.Body.String()).To(ContainSubstring(context.DeadlineExceeded.Error()))
			})
		})
	})

	Describe("POST /api/generate", func() {
		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			return do(req)
		}

		It("returns the verbatim text and metadata", func() {
			rec := post(`{"topic": "gardening", "length": 500}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var got generator.Post
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got.Text).To(Equal(llm.reply))
			Expect(got.Prompt).To(Equal("Generate a blog post about 'gardening' with a maximum of 500 words."))
			Expect(got.Title).To(Equal("Grow Your Own"))
			Expect(got.Length).To(Equal(500))
		})

		It("defaults and clamps the length", func() {
			post(`{"topic": "a"}`)
			post(`{"topic": "b", "length": 2600}`)
			Expect(llm.calls()).To(Equal([]string{
				"Generate a blog post about 'a' with a maximum of 500 words.",
				"Generate a blog post about 'b' with a maximum of 2000 words.",
			}))
		})

		It("skips generation for an empty topic", func() {
			rec := post(`{"topic": "", "length": 700}`)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(llm.calls()).To(BeEmpty())
		})

		It("rejects malformed JSON", func() {
			rec := post(`{"topic":`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(llm.calls()).To(BeEmpty())
		})

		It("surfaces backend errors unmodified", func() {
			llm.err = errors.New("rpc error: code = ResourceExhausted desc = quota")
			rec := post(`{"topic": "gardening"}`)
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(rec.Body.String()).To(MatchJSON(`{"error": "rpc error: code = ResourceExhausted desc = quota"}`))
		})
	})

	Describe("ops endpoints", func() {
		It("reports health", func() {
			rec := do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "ok", "provider": "fake", "model": "fake-1"}`))
		})

		It("exposes Prometheus metrics", func() {
			page(url.Values{"topic": {"gardening"}})
			rec := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("blog_post_generator_llm_call_total"))
		})

		It("echoes or assigns a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("X-Request-ID", "abc-123")
			Expect(do(req).Header().Get("X-Request-ID")).To(Equal("abc-123"))
			Expect(do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		Context("with metrics disabled", func() {
			BeforeEach(func() { cfg.Observability.Metrics.Enabled = false })

			It("does not route /metrics", func() {
				rec := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
				Expect(rec.Code).To(Equal(http.StatusNotFound))
			})
		})

		Context("with CORS enabled", func() {
			BeforeEach(func() {
				cfg.Server.CORS = config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://blog.example"}}
			})

			It("answers preflight requests", func() {
				req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
				req.Header.Set("Origin", "https://blog.example")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				rec := do(req)
				Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://blog.example"))
			})
		})
	})
})
