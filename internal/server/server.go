// Package server exposes the image analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"imgintel/internal/analysis"
	"imgintel/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	uploadField     = "image"
	// multipart overhead allowed on top of the image limit
	formOverheadBytes = 1 << 20
)

// Analyzer builds a report for one uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, name string, r io.Reader) (*analysis.Report, error)
}

// Server serves the upload form and the analysis API.
type Server struct {
	analyzer  Analyzer
	maxUpload int64
	log       zerolog.Logger
}

// NewServer creates a Server. Uploads larger than maxUpload bytes are
// rejected with 413; zero or less means analysis.DefaultMaxImageBytes.
func NewServer(analyzer Analyzer, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = analysis.DefaultMaxImageBytes
	}
	return &Server{
		analyzer:  analyzer,
		maxUpload: maxUpload,
		log:       logger.WithComponent("server"),
	}
}

// Router returns the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	r.MaxMultipartMemory = s.maxUpload + formOverheadBytes

	r.GET("/", s.uploadForm)
	r.GET("/healthz", s.health)
	r.GET("/api/search-links", s.searchLinks)
	r.POST("/api/analyze", s.analyze)
	r.POST("/api/analyze/geojson", s.analyzeGeoJSON)

	return r
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Upload service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down upload service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("request_id", id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		log := logger.WithRequestID(ctx.GetString("request_id"))
		event := log.Info()
		if ctx.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("component", "server").
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Int("status", ctx.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) searchLinks(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, analysis.SearchLinks())
}

func (s *Server) uploadForm(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uploadPage))
}

func (s *Server) analyze(ctx *gin.Context) {
	report, ok := s.runAnalysis(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, report)
}

func (s *Server) analyzeGeoJSON(ctx *gin.Context) {
	report, ok := s.runAnalysis(ctx)
	if !ok {
		return
	}
	feature := report.Feature()
	if feature == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no GPS data found"})
		return
	}
	ctx.JSON(http.StatusOK, feature)
}

// runAnalysis reads the uploaded file and analyzes it, writing the error
// response itself when something goes wrong.
func (s *Server) runAnalysis(ctx *gin.Context) (*analysis.Report, bool) {
	// Stop reading the body once it cannot hold an acceptable image.
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, s.maxUpload+formOverheadBytes)

	file, err := ctx.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": analysis.ErrImageTooLarge.Error()})
			return nil, false
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'image' is required"})
		return nil, false
	}
	if file.Size > s.maxUpload {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": analysis.ErrImageTooLarge.Error()})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return nil, false
	}
	defer f.Close()

	report, err := s.analyzer.Analyze(ctx.Request.Context(), file.Filename, f)
	if err != nil {
		status := statusFor(err)
		log := logger.WithRequestID(ctx.GetString("request_id"))
		log.Warn().Err(err).Str("file", file.Filename).Int("status", status).Msg("Analysis rejected")
		ctx.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return report, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrEmptyImage):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, analysis.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

const uploadPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Image Intelligence</title></head>
<body>
<h1>Image Intelligence</h1>
<p>Upload an image to see its EXIF metadata, GPS location, OCR text and reverse image search links.</p>
<form action="/api/analyze" method="post" enctype="multipart/form-data">
<input type="file" name="image" accept="image/jpeg,image/png,image/webp,image/tiff">
<button type="submit">Analyze</button>
</form>
</body>
</html>
`
