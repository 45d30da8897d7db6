// Package gui serves a small local web page for transcribing files without
// the command line. Jobs run one at a time on a single worker.
package gui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fmueller/speechtxt/internal/transcript"
	"github.com/fmueller/speechtxt/internal/whisper"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	queueSize    = 32
	previewRunes = 600
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// Outcome is what a finished transcription reports back to the GUI.
type Outcome struct {
	OutputPath string
	Language   string
	Segments   int
	Text       string
}

type Runner func(ctx context.Context, req transcript.Request) (Outcome, error)

type Options struct {
	Run             Runner
	DefaultLanguage string
	Logger          *zap.Logger
}

type Server struct {
	run             Runner
	defaultLanguage string
	logger          *zap.Logger
	store           *Store
	queue           chan string
	page            *template.Template
}

type submitRequest struct {
	AudioPath  string `json:"audio_path" form:"audio_path"`
	Language   string `json:"language" form:"language"`
	Timestamps bool   `json:"timestamps" form:"timestamps"`
	Chinese    string `json:"chinese" form:"chinese"`
}

func New(opts Options) (*Server, error) {
	if opts.Run == nil {
		return nil, errors.New("gui runner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = whisper.AutoLanguage
	}

	page, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse gui template: %w", err)
	}

	return &Server{
		run:             opts.Run,
		defaultLanguage: lang,
		logger:          logger,
		store:           NewStore(),
		queue:           make(chan string, queueSize),
		page:            page,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/", s.handleIndex)

	api := r.Group("/api")
	{
		api.GET("/languages", s.handleLanguages)
		api.POST("/jobs", s.handleSubmit)
		api.GET("/jobs", s.handleList)
		api.GET("/jobs/:id", s.handleGet)
		api.GET("/jobs/:id/output", s.handleOutput)
	}
	return r
}

// Serve runs the HTTP server and the worker until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go s.Work(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("gui listening", zap.String("url", "http://"+addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gui server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown gui server: %w", err)
	}
	return nil
}

// Work processes queued jobs one at a time until ctx is cancelled.
func (s *Server) Work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			s.process(ctx, id)
		}
	}
}

func (s *Server) process(ctx context.Context, id string) {
	job, err := s.store.Get(id)
	if err != nil {
		return
	}
	_ = s.store.Update(id, func(j *Job) { j.Status = StatusProcessing })

	req := transcript.Request{
		AudioPath:  job.AudioPath,
		Language:   job.Language,
		Timestamps: job.Timestamps,
		Chinese:    transcript.ChineseMode(job.Chinese),
	}
	outcome, runErr := s.run(ctx, req)

	_ = s.store.Update(id, func(j *Job) {
		j.CompletedAt = time.Now()
		if runErr != nil {
			j.Status = StatusFailed
			j.Error = runErr.Error()
			return
		}
		j.Status = StatusCompleted
		j.OutputPath = outcome.OutputPath
		j.DetectedLanguage = outcome.Language
		j.Segments = outcome.Segments
		j.Preview = preview(outcome.Text)
	})

	if runErr != nil {
		s.logger.Error("gui job failed", zap.String("job", id), zap.Error(runErr))
		return
	}
	s.logger.Info("gui job completed", zap.String("job", id), zap.String("output", outcome.OutputPath))
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.page.Execute(c.Writer, map[string]any{
		"Languages":       whisper.Languages(),
		"DefaultLanguage": s.defaultLanguage,
	})
	if err != nil {
		s.logger.Error("render gui page", zap.Error(err))
	}
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"auto":      whisper.AutoLanguage,
		"languages": whisper.Languages(),
	})
}

func (s *Server) handleSubmit(c *gin.Context) {
	var body submitRequest
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	job, err := s.newJob(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.Save(job)
	select {
	case s.queue <- job.ID:
	default:
		_ = s.store.Update(job.ID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = "queue is full"
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many pending jobs"})
		return
	}

	if job.Overwrites {
		s.logger.Warn("output file will be overwritten", zap.String("output", job.OutputPath))
	}
	c.JSON(http.StatusAccepted, job)
}

func (s *Server) newJob(body submitRequest) (Job, error) {
	lang := body.Language
	if strings.TrimSpace(lang) == "" {
		lang = s.defaultLanguage
	}
	lang, err := whisper.NormalizeLanguage(lang)
	if err != nil {
		return Job{}, err
	}

	var mode transcript.ChineseMode
	if strings.TrimSpace(body.Chinese) != "" {
		if mode, err = transcript.ParseChineseMode(body.Chinese); err != nil {
			return Job{}, err
		}
	}

	req := transcript.Request{
		AudioPath:  strings.TrimSpace(body.AudioPath),
		Language:   lang,
		Timestamps: body.Timestamps,
		Chinese:    mode,
	}
	if req.AudioPath == "" {
		return Job{}, errors.New("audio_path is required")
	}
	if err := req.Validate(); err != nil {
		return Job{}, err
	}

	output := transcript.OutputPath(req.AudioPath)
	_, statErr := os.Stat(output)

	return Job{
		ID:         uuid.NewString(),
		AudioPath:  req.AudioPath,
		Language:   req.Language,
		Timestamps: req.Timestamps,
		Chinese:    string(req.Chinese),
		Status:     StatusPending,
		OutputPath: output,
		Overwrites: statErr == nil,
		CreatedAt:  time.Now(),
	}, nil
}

func (s *Server) handleList(c *gin.Context) {
	jobs := s.store.List()
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

func (s *Server) handleGet(c *gin.Context) {
	job, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleOutput(c *gin.Context) {
	job, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if job.Status != StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "job is " + string(job.Status)})
		return
	}

	content, err := os.ReadFile(job.OutputPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read output: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("gui request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}
