package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imgintel/internal/analysis"
	"imgintel/internal/logger"
	"imgintel/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload service",
	Long: `Start an HTTP server with an upload form and a JSON API.

Routes:
  GET  /                     upload form
  GET  /healthz              liveness probe
  GET  /api/search-links     reverse image search links
  POST /api/analyze          multipart field "image", returns the JSON report
  POST /api/analyze/geojson  multipart field "image", returns a GeoJSON feature`,
	Example: `  imgintel serve --addr :8080
  curl -F image=@photo.jpg http://localhost:8080/api/analyze`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: SERVER_ADDR)")
	serveCmd.Flags().Bool("no-ocr", false, "Skip OCR text extraction")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}
	noOCR, _ := cmd.Flags().GetBool("no-ocr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := analysis.Options{
		H3Resolution:  cfg.H3Resolution,
		MaxImageBytes: cfg.MaxUploadBytes,
	}
	if cfg.OCREnabled && !noOCR {
		ocrService, err := createOCRService(ctx, log)
		if err != nil {
			return err
		}
		defer closeOCRService(ocrService, log)
		opts.OCR = ocrService
	}

	log.Info().
		Str("addr", addr).
		Bool("ocr", opts.OCR != nil).
		Int64("max_upload_bytes", cfg.MaxUploadBytes).
		Msg("Starting upload service")

	return server.NewServer(analysis.NewAnalyzer(opts), cfg.MaxUploadBytes).Run(ctx, addr)
}
