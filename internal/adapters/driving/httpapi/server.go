package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// multipartOverhead is added to upload limits to account for form framing.
const multipartOverhead = 1 << 20

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	QA       driving.QAService
	Matching driving.MatchingService

	// Settings backs GET /api/config. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.QA == nil {
		return ErrMissingQAService
	}
	if p.Matching == nil {
		return ErrMissingMatchingService
	}
	return nil
}

// Options tunes request limits.
type Options struct {
	// MaxQAUpload is the largest accepted document for /api/upload.
	MaxQAUpload int64

	// MaxMatchUpload is the largest accepted request for resume and job uploads.
	MaxMatchUpload int64
}

// Server serves the JSON API.
type Server struct {
	ports   *Ports
	opts    Options
	session *domain.Session
	engine  *gin.Engine
}

// NewServer creates a server and its session.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		ports:   ports,
		opts:    opts,
		session: ports.Matching.NewSession(),
	}
	s.engine = s.routes()
	logger.Debug("HTTP session %s created", s.session.ID)
	return s, nil
}

// Handler returns the HTTP handler, for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Session returns the server's matching session.
func (s *Server) Session() *domain.Session {
	return s.session
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(requestLogger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/config", s.getConfig)
		api.GET("/status", s.getStatus)
		api.POST("/upload", limitBody(s.opts.MaxQAUpload), s.uploadDocument)
		api.POST("/ask", s.ask)
		api.POST("/retrieve", s.retrieve)
		api.POST("/clear", s.clearIndex)

		match := api.Group("/match")
		{
			match.POST("/resumes", limitBody(s.opts.MaxMatchUpload), s.uploadResumes)
			match.GET("/resumes", s.listResumes)
			match.POST("/resumes/clear", s.clearResumes)
			match.POST("/job", limitBody(s.opts.MaxMatchUpload), s.uploadJob)
			match.POST("/job/text", s.submitJobText)
			match.POST("/job/clear", s.clearJob)
			match.POST("/run", s.runMatch)
			match.POST("/skills", s.extractSkills)
			match.GET("/export", s.exportResults)
		}
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// limitBody caps the request body. 0 disables the cap.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
		}
		c.Next()
	}
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}
