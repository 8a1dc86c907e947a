package http

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"triage-advisor/internal/core"
	"triage-advisor/pkg"
)

const (
	pageTitle       = "AI Healthcare Chatbot"
	pageDescription = "AI-powered clinical triage assistant that evaluates symptoms, age, gender, and medical history to provide urgent care guidance."
	recentLimit     = 50
)

//go:embed templates/*.html
var templateFS embed.FS

// AssessmentStore is the audit log used by the server.  It is optional.
type AssessmentStore interface {
	RecordAssessment(ctx context.Context, a *pkg.Assessment) error
	ListRecent(ctx context.Context, limit int) ([]pkg.Assessment, error)
	CountByUrgency(ctx context.Context) ([]pkg.UrgencyCount, error)
}

// AlertNotifier is told about emergency assessments.  It is optional.
type AlertNotifier interface {
	Notify(ctx context.Context, assessmentID string) error
}

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Triage    *core.TriageService
	Store     AssessmentStore
	Notifier  AlertNotifier
	Templates *template.Template
	Log       *zap.Logger

	engine *gin.Engine
	md     goldmark.Markdown
}

// Options configures optional collaborators of NewServer.
type Options struct {
	Store          AssessmentStore
	Notifier       AlertNotifier
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewServer constructs a Server and registers its routes.
func NewServer(triage *core.TriageService, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Triage:    triage,
		Store:     opts.Store,
		Notifier:  opts.Notifier,
		Templates: tmpl,
		Log:       logger,
		md:        goldmark.New(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	origins := append([]string{"http://localhost:3000"}, opts.AllowedOrigins...)
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleIndex)
	r.POST("/triage", s.handleTriageForm)
	r.POST("/api/triage", s.handleTriageAPI)
	r.GET("/api/examples", s.handleExamples)
	r.GET("/api/assessments", s.handleAssessments)
	r.GET("/health", s.handleHealth)
	s.engine = r
	return s, nil
}

// ServeHTTP delegates to the gin router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// handleIndex renders the intake form.
func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":       pageTitle,
		"Description": pageDescription,
		"Genders":     pkg.Genders,
		"Examples":    core.Examples(),
	})
}

// handleTriageForm evaluates a submitted form and returns the report as an
// HTML fragment for the form page to swap in.
func (s *Server) handleTriageForm(c *gin.Context) {
	var in pkg.PatientInput
	if err := c.ShouldBind(&in); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	id, report, _, _ := s.assess(c.Request.Context(), in)
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(report), &buf); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.HTML(http.StatusOK, "report.html", gin.H{
		"ID":   id,
		"HTML": template.HTML(buf.String()),
	})
}

// handleTriageAPI is the JSON variant of handleTriageForm.  Evaluation
// failures are part of the response body, not the status code.
func (s *Server) handleTriageAPI(c *gin.Context) {
	var in pkg.PatientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, report, rec, err := s.assess(c.Request.Context(), in)
	resp := pkg.TriageResponse{ID: id, Report: report, Record: rec}
	if err != nil {
		resp.Error = &pkg.ErrorDetail{Kind: string(core.KindOf(err)), Message: core.ErrorMessage(err)}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExamples(c *gin.Context) {
	c.JSON(http.StatusOK, core.Examples())
}

// handleAssessments returns recent audit rows and per-level counts.
func (s *Server) handleAssessments(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment log disabled"})
		return
	}
	ctx := c.Request.Context()
	recent, err := s.Store.ListRecent(ctx, recentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	counts, err := s.Store.CountByUrgency(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recent": recent, "by_urgency": counts})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"llm_configured": s.Triage.Settings.APIKey != "",
		"audit_log":      s.Store != nil,
	})
}

// assess evaluates in, formats the outcome and records it in the audit log.
// Audit failures are logged and never change the report.
func (s *Server) assess(ctx context.Context, in pkg.PatientInput) (string, string, *pkg.TriageRecord, error) {
	started := time.Now()
	rec, err := s.Triage.Evaluate(ctx, in)
	a := core.NewAssessment(s.Triage.Settings.Model, rec, err, time.Since(started))
	s.record(ctx, a)
	return a.ID, core.Format(rec, err), rec, err
}

func (s *Server) record(ctx context.Context, a *pkg.Assessment) {
	if s.Store != nil {
		if err := s.Store.RecordAssessment(ctx, a); err != nil {
			s.Log.Warn("failed to record assessment", zap.String("id", a.ID), zap.Error(err))
			return
		}
	}
	if s.Notifier != nil && a.UrgencyLevel == pkg.UrgencyEmergency {
		if err := s.Notifier.Notify(ctx, a.ID); err != nil {
			s.Log.Warn("failed to notify emergency", zap.String("id", a.ID), zap.Error(err))
		}
	}
}
