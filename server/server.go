package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"blog_post_generator/config"
	"blog_post_generator/generator"
	"blog_post_generator/pkg/logger"
	"blog_post_generator/render"
)

//go:embed web/templates/*.html
var templatesFS embed.FS

type Server struct {
	genAgent *generator.Agent
	cfg      config.Config
	engine   *gin.Engine
}

func New(genAgent *generator.Agent, cfg config.Config) (*Server, error) {
	if genAgent == nil {
		return nil, errors.New("generator agent required")
	}

	tmpl, err := template.ParseFS(templatesFS, "web/templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{genAgent: genAgent, cfg: cfg}
	s.engine = s.buildEngine(tmpl)
	return s, nil
}

// Routes returns the HTTP handler serving the page, the API and ops endpoints.
func (s *Server) Routes() http.Handler {
	return s.engine
}

func (s *Server) buildEngine(tmpl *template.Template) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	r.Use(requestID(), recovery(), accessLog(), metricsMiddleware())
	if s.cfg.Observability.Tracing.Enabled {
		r.Use(otelgin.Middleware(s.cfg.App.Name), traceContext())
	}
	if s.cfg.Server.CORS.Enabled {
		r.Use(corsMiddleware(s.cfg.Server.CORS.AllowedOrigins))
	}

	r.GET("/", s.handleIndex)
	r.POST("/api/generate", s.handleGenerate)
	r.GET("/healthz", s.handleHealth)
	if s.cfg.Observability.Metrics.Enabled {
		path := s.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}
	return r
}

// --- Handlers ---

type pageView struct {
	Topic     string
	Length    int
	MinLength int
	MaxLength int
	Step      int
	Post      *generator.Post
	Body      template.HTML
	Error     string
}

// handleIndex renders the form and, when a topic was submitted, generates
// the post within the same request.
func (s *Server) handleIndex(c *gin.Context) {
	view := pageView{
		Topic:     c.Query("topic"),
		Length:    generator.ParseLength(c.Query("length")),
		MinLength: generator.MinLength,
		MaxLength: generator.MaxLength,
		Step:      generator.LengthStep,
	}
	if view.Topic == "" {
		c.HTML(http.StatusOK, "index.html", view)
		return
	}

	ctx, cancel := s.generationContext(c.Request.Context())
	defer cancel()
	post, err := s.genAgent.Generate(ctx, view.Topic, view.Length)
	if err != nil {
		logger.Error(ctx, "generation failed", err, "length", view.Length)
		view.Error = err.Error()
		c.HTML(http.StatusBadGateway, "index.html", view)
		return
	}

	body, err := render.Markdown(post.Text)
	if err != nil {
		logger.Error(ctx, "render failed", err)
		view.Error = err.Error()
		c.HTML(http.StatusInternalServerError, "index.html", view)
		return
	}
	view.Post = &post
	view.Body = body
	c.HTML(http.StatusOK, "index.html", view)
}

type generateReq struct {
	Topic  string `json:"topic"`
	Length int    `json:"length"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if req.Topic == "" {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := s.generationContext(c.Request.Context())
	defer cancel()
	post, err := s.genAgent.Generate(ctx, req.Topic, generator.LengthOrDefault(req.Length))
	if err != nil {
		logger.Error(ctx, "generation failed", err)
		c.JSON(http.StatusBadGateway, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleHealth(c *gin.Context) {
	info := s.genAgent.Info()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": info.Provider, "model": info.Model})
}

// generationContext applies llm.timeout when one is configured.
func (s *Server) generationContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.LLM.Timeout > 0 {
		return context.WithTimeout(parent, s.cfg.LLM.Timeout)
	}
	return context.WithCancel(parent)
}
