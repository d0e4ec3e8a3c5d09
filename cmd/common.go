package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"imgintel/internal/analysis"
	"imgintel/internal/ocr"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// validateImageFile checks that the file exists, is a regular non-empty file
// and fits the upload limit.
func validateImageFile(imagePath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	// The format is sniffed from content later; the extension is only a hint.
	if !imageExtensions[strings.ToLower(filepath.Ext(imagePath))] {
		log.Warn().
			Str("file", imagePath).
			Msg("File does not have a JPEG, PNG, WEBP or TIFF extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > cfg.MaxUploadBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", cfg.MaxUploadBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes",
			fileInfo.Size(), cfg.MaxUploadBytes)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createOCRService creates the Vision OCR service. The caller owns Close.
func createOCRService(ctx context.Context, log zerolog.Logger) (*ocr.GoogleVisionOCRService, error) {
	ocrService, err := ocr.NewGoogleVisionOCRService(ctx)
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
				"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
				"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
				"2. Export GOOGLE_CREDENTIALS with inline JSON\n\n" +
				"3. Use Application Default Credentials (if gcloud is configured):\n" +
				"   gcloud auth application-default login\n\n" +
				"Or skip OCR with --no-ocr / OCR_ENABLED=false")
		}
		log.Error().
			Err(err).
			Msg("Failed to create OCR service")
		return nil, fmt.Errorf("failed to create OCR service: %w", err)
	}

	log.Debug().Msg("OCR service created successfully")
	return ocrService, nil
}

func closeOCRService(svc *ocr.GoogleVisionOCRService, log zerolog.Logger) {
	if svc == nil {
		return
	}
	if err := svc.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close OCR client")
	}
}

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large for OCR (maximum 20MB)")
	case errors.Is(err, ocr.ErrEmptyImage):
		return fmt.Errorf("image is empty")
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("no text detected in the image")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Check GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account has the 'Cloud Vision API User' role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud Vision API quota exceeded. Check your project quotas in the Google Cloud Console")
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}

// handleAnalysisError maps analysis failures to user-facing messages.
func handleAnalysisError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Image analysis failed")

	switch {
	case errors.Is(err, analysis.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported image format. Supported formats are JPEG, PNG, WEBP and TIFF")
	case errors.Is(err, analysis.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum %d bytes)", cfg.MaxUploadBytes)
	case errors.Is(err, analysis.ErrEmptyImage):
		return fmt.Errorf("image is empty")
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("image analysis timed out. Try increasing --timeout or use --no-ocr")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("image analysis was canceled")
	default:
		return fmt.Errorf("image analysis failed: %w", err)
	}
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(data []byte, outputPath string, log zerolog.Logger) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
