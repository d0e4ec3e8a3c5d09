// Package ocr provides OCR (Optical Character Recognition) for images using the
// Google Cloud Vision API.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID
//
// Cloud Vision API Limitations:
//   - Maximum image size: 20MB for inline content
//   - Supported formats: JPEG, PNG, WEBP, TIFF, GIF, BMP, ICO, RAW
//
// Implementation Details:
//   - Uses DOCUMENT_TEXT_DETECTION, which handles dense text better than TEXT_DETECTION
//   - Sends the image as inline bytes (no GCS upload required)
//   - Averages page-level confidence across the detected pages
package ocr

import (
	"context"
	"io"
	"time"
)

// OCRService defines the interface for OCR text extraction services.
type OCRService interface {
	// ProcessImage extracts the text of an image.
	ProcessImage(ctx context.Context, image io.Reader) (string, error)

	// ProcessImageWithMetadata extracts text along with confidence, detected
	// languages and timing.
	ProcessImageWithMetadata(ctx context.Context, image io.Reader) (*OCRResult, error)
}

// OCRResult contains the results of OCR processing with metadata.
type OCRResult struct {
	// Text is the full extracted text in reading order.
	Text string `json:"text"`

	// Confidence is the average page confidence (0.0 to 1.0). Zero when the
	// engine did not report one.
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the detected languages, sorted.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is the timestamp when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the OCR processing took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
