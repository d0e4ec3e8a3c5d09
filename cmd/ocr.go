package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"imgintel/internal/logger"
	"imgintel/internal/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Extract text from an image using Google Cloud Vision OCR",
	Long: `Extract the text of an image with Google Cloud Vision document text detection.

Images are sent inline and must not exceed 20MB.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID`,
	Example: `  # Extract text to stdout
  imgintel ocr screenshot.png

  # Save extracted text to file
  imgintel ocr screenshot.png -o extracted.txt

  # Include metadata and output as JSON
  imgintel ocr screenshot.png --metadata --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// OCROutput represents the JSON output structure when --json flag is used
type OCROutput struct {
	Text               string    `json:"text"`
	Confidence         float32   `json:"confidence,omitempty"`
	LanguageCodes      []string  `json:"language_codes,omitempty"`
	ProcessedAt        time.Time `json:"processed_at,omitempty"`
	ProcessingDuration string    `json:"processing_duration,omitempty"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().BoolP("metadata", "m", false, "Include metadata in output")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	log.Info().
		Str("file", imagePath).
		Str("output", outputPath).
		Bool("metadata", includeMetadata).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting OCR processing")

	fileInfo, err := validateImageFile(imagePath, log)
	if err != nil {
		return err
	}
	if fileInfo.Size() > ocr.MaxImageSizeBytes {
		return fmt.Errorf("image file too large for OCR (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxImageSizeBytes)
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	ocrService, err := createOCRService(ctx, log)
	if err != nil {
		return err
	}
	defer closeOCRService(ocrService, log)

	imageFile, err := os.Open(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to open image file")
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() {
		if closeErr := imageFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close image file")
		}
	}()

	result, err := ocrService.ProcessImageWithMetadata(ctx, imageFile)
	if err != nil {
		return handleOCRError(err, log)
	}

	log.Info().
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR processing completed successfully")

	return outputOCRResults(result, fileInfo, outputPath, jsonOutput, includeMetadata, log)
}

// outputOCRResults formats and outputs the OCR results
func outputOCRResults(result *ocr.OCRResult, fileInfo os.FileInfo, outputPath string, jsonOutput, includeMetadata bool, log zerolog.Logger) error {
	if jsonOutput {
		ocrOutput := OCROutput{
			Text:               result.Text,
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
			Confidence:         result.Confidence,
			LanguageCodes:      result.LanguageCodes,
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
		}

		outputData, err := json.MarshalIndent(ocrOutput, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return writeOutput(append(outputData, '\n'), outputPath, log)
	}

	var output strings.Builder
	if includeMetadata {
		fmt.Fprintf(&output, "=== OCR Results for %s ===\n", filepath.Base(fileInfo.Name()))
		fmt.Fprintf(&output, "File size: %d bytes\n", fileInfo.Size())
		if result.Confidence > 0 {
			fmt.Fprintf(&output, "Confidence: %.1f%%\n", result.Confidence*100)
		}
		if len(result.LanguageCodes) > 0 {
			fmt.Fprintf(&output, "Languages: %s\n", strings.Join(result.LanguageCodes, ", "))
		}
		fmt.Fprintf(&output, "Processing time: %v\n", result.ProcessingDuration)
		fmt.Fprintf(&output, "Processed at: %s\n", result.ProcessedAt.Format(time.RFC3339))
		output.WriteString("\n=== Extracted Text ===\n\n")
	}

	output.WriteString(result.Text)
	if !strings.HasSuffix(result.Text, "\n") {
		output.WriteString("\n")
	}
	return writeOutput([]byte(output.String()), outputPath, log)
}
