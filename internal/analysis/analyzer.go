// Package analysis runs the per-upload pipeline: format sniffing, EXIF dump,
// GPS resolution, OCR and reverse image search links.
//
// Each call to Analyze is independent. Nothing is cached or persisted between
// calls, and the only shared state is the read-only Analyzer configuration
// and the OCR client.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"imgintel/internal/exifmeta"
	"imgintel/internal/geotag"
	"imgintel/internal/logger"
	"imgintel/internal/ocr"
)

const (
	// DefaultMaxImageBytes matches the inline limit of the OCR engine.
	DefaultMaxImageBytes = ocr.MaxImageSizeBytes

	// DefaultH3Resolution gives cells of roughly 0.1 km².
	DefaultH3Resolution = 9
)

var supportedFormats = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/tiff": true,
}

// Options configures an Analyzer.
type Options struct {
	// OCR extracts text. A nil service skips the OCR step.
	OCR ocr.OCRService

	// H3Resolution is the resolution of the reported H3 cell (0-15).
	H3Resolution int

	// MaxImageBytes limits the accepted upload size. Zero means DefaultMaxImageBytes.
	MaxImageBytes int64
}

// Analyzer turns one image into a Report.
type Analyzer struct {
	ocr          ocr.OCRService
	h3Resolution int
	maxBytes     int64
	log          zerolog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options) *Analyzer {
	maxBytes := opts.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Analyzer{
		ocr:          opts.OCR,
		h3Resolution: opts.H3Resolution,
		maxBytes:     maxBytes,
		log:          logger.WithComponent("analysis"),
	}
}

// Analyze reads the image from r and builds its report. name is only used for
// display. Metadata and OCR problems are recorded in the report; the returned
// error covers unusable input and cancellation.
func (a *Analyzer) Analyze(ctx context.Context, name string, r io.Reader) (*Report, error) {
	const op = "Analyze"
	start := time.Now()

	data, err := io.ReadAll(io.LimitReader(r, a.maxBytes+1))
	if err != nil {
		return nil, WrapAnalysisError(op, err, "failed to read image")
	}
	if len(data) == 0 {
		return nil, WrapAnalysisError(op, ErrEmptyImage, name)
	}
	if int64(len(data)) > a.maxBytes {
		return nil, WrapAnalysisError(op, ErrImageTooLarge, fmt.Sprintf("limit is %d bytes", a.maxBytes))
	}

	mime := mimetype.Detect(data).String()
	if !supportedFormats[mime] {
		return nil, WrapAnalysisError("DetectFormat", ErrUnsupportedFormat, mime)
	}

	log := a.log.With().Str("file", name).Str("mime", mime).Logger()
	log.Debug().Int("size", len(data)).Msg("Analyzing image")

	report := &Report{
		File:        name,
		Size:        int64(len(data)),
		MIME:        mime,
		SearchLinks: SearchLinks(),
	}

	meta, err := exifmeta.Read(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("No EXIF metadata found")
	}
	report.Tags = meta.Tags()

	fix := geotag.Resolve(meta.GPS())
	report.Location = a.locate(fix, log)

	ocrSection, err := a.extractText(ctx, data, log)
	if err != nil {
		return nil, WrapAnalysisError(op, err, "OCR interrupted")
	}
	report.OCR = ocrSection

	report.ProcessedAt = time.Now()
	report.Duration = report.ProcessedAt.Sub(start)

	log.Info().
		Int("tags", len(report.Tags)).
		Bool("gps", report.Location != nil).
		Str("ocr_status", string(report.OCR.Status)).
		Dur("duration", report.Duration).
		Msg("Image analysis completed")

	return report, nil
}

func (a *Analyzer) locate(fix geotag.GeoFix, log zerolog.Logger) *Location {
	lat, lon, ok := fix.LatLon()
	if !ok {
		log.Debug().Msg("No GPS fix")
		return nil
	}

	loc := &Location{Latitude: lat, Longitude: lon, MapURL: MapURL(fix)}
	cell, err := H3Cell(fix, a.h3Resolution)
	if err != nil {
		log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Failed to compute H3 cell")
	} else {
		loc.H3Cell = cell
	}
	return loc
}

// extractText runs OCR. Engine failures are recorded in the section; only
// context cancellation is returned as an error.
func (a *Analyzer) extractText(ctx context.Context, data []byte, log zerolog.Logger) (OCRSection, error) {
	if a.ocr == nil {
		return OCRSection{Status: OCRSkipped}, nil
	}

	result, err := a.ocr.ProcessImageWithMetadata(ctx, bytes.NewReader(data))
	switch {
	case err == nil:
		return OCRSection{
			Status:        OCROK,
			Text:          result.Text,
			Confidence:    result.Confidence,
			LanguageCodes: result.LanguageCodes,
		}, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OCRSection{}, err
	case errors.Is(err, ocr.ErrNoText):
		log.Info().Msg("No text detected in the image")
		return OCRSection{Status: OCRNoText}, nil
	default:
		log.Error().Err(err).Msg("OCR failed")
		return OCRSection{Status: OCRError, Error: err.Error()}, nil
	}
}
