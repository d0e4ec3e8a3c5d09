package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"imgintel/internal/analysis"
	"imgintel/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-file]",
	Short: "Full analysis: EXIF, GPS location, OCR text and reverse image search links",
	Long: `Analyze a single JPEG, PNG, WEBP or TIFF image.

The report contains every EXIF tag, the GPS position with a Google Maps link
(when the image is geotagged), the text found by Google Cloud Vision OCR and
links to reverse image search engines.

OCR needs Google Cloud credentials (GOOGLE_APPLICATION_CREDENTIALS or
GOOGLE_CREDENTIALS). Use --no-ocr or OCR_ENABLED=false to skip it.`,
	Example: `  # Human-readable report
  imgintel analyze photo.jpg

  # JSON report written to a file
  imgintel analyze photo.jpg --json -o report.json

  # Only the location, as a GeoJSON feature
  imgintel analyze photo.jpg --geojson --no-ocr`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
	analyzeCmd.Flags().Bool("geojson", false, "Output the GPS location as a GeoJSON feature")
	analyzeCmd.Flags().Bool("no-ocr", false, "Skip OCR text extraction")
	analyzeCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("analyze")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	geoJSONOutput, _ := cmd.Flags().GetBool("geojson")
	noOCR, _ := cmd.Flags().GetBool("no-ocr")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	withOCR := cfg.OCREnabled && !noOCR

	log.Info().
		Str("file", imagePath).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Bool("geojson", geoJSONOutput).
		Bool("ocr", withOCR).
		Int("timeout", timeoutSecs).
		Msg("Starting image analysis")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	report, err := analyzeFile(ctx, imagePath, withOCR, log)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case geoJSONOutput:
		out, err = marshalFeature(report)
	case jsonOutput:
		out, err = json.MarshalIndent(report, "", "  ")
		out = append(out, '\n')
	default:
		var b strings.Builder
		err = report.WriteText(&b)
		out = []byte(b.String())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to format report")
		return fmt.Errorf("failed to format report: %w", err)
	}

	return writeOutput(out, outputPath, log)
}

// analyzeFile validates and analyzes one image file. OCR runs only when
// withOCR is set.
func analyzeFile(ctx context.Context, imagePath string, withOCR bool, log zerolog.Logger) (*analysis.Report, error) {
	if _, err := validateImageFile(imagePath, log); err != nil {
		return nil, err
	}

	opts := analysis.Options{
		H3Resolution:  cfg.H3Resolution,
		MaxImageBytes: cfg.MaxUploadBytes,
	}
	if withOCR {
		ocrService, err := createOCRService(ctx, log)
		if err != nil {
			return nil, err
		}
		defer closeOCRService(ocrService, log)
		opts.OCR = ocrService
	}

	f, err := os.Open(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to open image file")
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close image file")
		}
	}()

	report, err := analysis.NewAnalyzer(opts).Analyze(ctx, filepath.Base(imagePath), f)
	if err != nil {
		return nil, handleAnalysisError(err, log)
	}
	return report, nil
}

func marshalFeature(report *analysis.Report) ([]byte, error) {
	feature := report.Feature()
	if feature == nil {
		return nil, fmt.Errorf("no GPS data found in %s", report.File)
	}
	out, err := json.MarshalIndent(feature, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
