// Package server exposes the classifier over HTTP.
package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"feedbackbot/internal/classify"
	"feedbackbot/internal/domain"
	"feedbackbot/internal/export"
	"feedbackbot/internal/ingest"
	"feedbackbot/internal/storage/sqlite"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 10 << 20
)

var errUploadTooLarge = fmt.Errorf("upload larger than %d MB", maxUploadBytes>>20)

// Server wires HTTP handlers to the resolver and the download store.
type Server struct {
	resolver       *classify.Resolver
	db             *sql.DB
	log            *logrus.Logger
	now            func() time.Time
	allowedOrigins []string
}

type analyzeResponse struct {
	Results      []domain.ClassificationRecord `json:"results"`
	DownloadLink string                        `json:"download_link,omitempty"`
}

type analyzeTextRequest struct {
	Text string `json:"text"`
}

func New(resolver *classify.Resolver, db *sql.DB, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{resolver: resolver, db: db, log: logger, now: time.Now}
}

// AllowOrigins enables CORS for browser front-ends. "*" allows any origin;
// no origins leaves CORS off.
func (s *Server) AllowOrigins(origins ...string) *Server {
	s.allowedOrigins = origins
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.allowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		if len(s.allowedOrigins) == 1 && s.allowedOrigins[0] == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = s.allowedOrigins
		}
		corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsCfg.ExposeHeaders = []string{"Content-Disposition"}
		r.Use(cors.New(corsCfg))
	}
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/analyze", s.handleAnalyze)
	r.GET("/download/:id", s.handleDownload)

	api := r.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyzeText)
	}
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("feedbackbot HTTP listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(started).Round(time.Millisecond).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"model_enabled": s.resolver.ModelEnabled(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if c.Request.ContentLength > maxUploadBytes {
		s.renderError(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var fileItems []string
	header, err := c.FormFile("file")
	switch {
	case err == nil:
		f, openErr := header.Open()
		if openErr != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("open upload: %w", openErr))
			return
		}
		fileItems, err = ingest.ExtractFeedbacks(header.Filename, f)
		f.Close()
		if err != nil {
			s.renderError(c, http.StatusBadRequest, err)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case isTooLarge(err):
		s.renderError(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		return
	default:
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	items := ingest.Collect(fileItems, c.PostForm("feedback"))
	if len(items) == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("no feedback provided: send 'feedback' text or a 'file'"))
		return
	}

	results := domain.StripDiagnostics(s.resolver.ClassifyAll(c.Request.Context(), items))
	resp := analyzeResponse{Results: results}
	if id, err := sqlite.SaveBatch(s.db, results, s.now()); err != nil {
		s.log.WithError(err).Warn("save download batch")
	} else {
		resp.DownloadLink = "/download/" + id
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDownload(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("id"), ".xlsx")
	batch, err := sqlite.GetBatch(s.db, id)
	if errors.Is(err, sqlite.ErrBatchNotFound) {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, batch.Records); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(batch.ID)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleAnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	c.JSON(http.StatusOK, s.resolver.Classify(c.Request.Context(), req.Text))
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
