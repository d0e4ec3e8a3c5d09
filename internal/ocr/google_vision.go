package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// MaxImageSizeBytes is the largest image sent inline to the Vision API (20MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

// ImageAnnotator is the subset of the Vision client used for OCR.
// *vision.ImageAnnotatorClient satisfies it.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// GoogleVisionOCRService implements OCRService using Google Cloud Vision API.
type GoogleVisionOCRService struct {
	client ImageAnnotator
}

// NewGoogleVisionOCRService creates a new OCR service with credentials from environment.
// It expects either GOOGLE_CREDENTIALS JSON or a GOOGLE_APPLICATION_CREDENTIALS path,
// and falls back to Application Default Credentials.
func NewGoogleVisionOCRService(ctx context.Context) (*GoogleVisionOCRService, error) {
	const op = "NewGoogleVisionOCRService"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionOCRService{client: client}, nil
}

// NewGoogleVisionOCRServiceWithClient creates a new OCR service with an explicit client (for testing).
func NewGoogleVisionOCRServiceWithClient(client ImageAnnotator) *GoogleVisionOCRService {
	return &GoogleVisionOCRService{client: client}
}

// ProcessImage extracts the text of an image.
func (g *GoogleVisionOCRService) ProcessImage(ctx context.Context, image io.Reader) (string, error) {
	result, err := g.ProcessImageWithMetadata(ctx, image)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ProcessImageWithMetadata extracts text from an image with additional metadata.
func (g *GoogleVisionOCRService) ProcessImageWithMetadata(ctx context.Context, image io.Reader) (*OCRResult, error) {
	const op = "ProcessImageWithMetadata"
	startTime := time.Now()

	imageBytes, err := io.ReadAll(io.LimitReader(image, MaxImageSizeBytes+1))
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}
	if len(imageBytes) == 0 {
		return nil, WrapOCRError(op, ErrEmptyImage, "")
	}
	if len(imageBytes) > MaxImageSizeBytes {
		return nil, WrapOCRError(op, ErrImageTooLarge, fmt.Sprintf("more than %d bytes", MaxImageSizeBytes))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageBytes},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapOCRError(op, err, "Vision API call interrupted")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, WrapOCRError(op, ctxErr, "Vision API call interrupted")
		}
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}

	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	imageResp := resp.GetResponses()[0]
	if imageResp.GetError() != nil && imageResp.GetError().GetMessage() != "" {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", imageResp.GetError().GetMessage()))
	}

	result, err := processVisionResponse(imageResp)
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// processVisionResponse extracts text, confidence and languages from one image response.
func processVisionResponse(resp *visionpb.AnnotateImageResponse) (*OCRResult, error) {
	annotation := resp.GetFullTextAnnotation()

	text := annotation.GetText()
	if text == "" && len(resp.GetTextAnnotations()) > 0 {
		// The first entity annotation holds the whole detected text.
		text = resp.GetTextAnnotations()[0].GetDescription()
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range annotation.GetPages() {
		if page.GetConfidence() > 0 {
			confidenceSum += page.GetConfidence()
			confidenceCount++
		}
		for _, lang := range page.GetProperty().GetDetectedLanguages() {
			if lang.GetLanguageCode() != "" {
				languageSet[lang.GetLanguageCode()] = true
			}
		}
	}
	for _, entity := range resp.GetTextAnnotations() {
		if entity.GetLocale() != "" {
			languageSet[entity.GetLocale()] = true
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &OCRResult{
		Text:          text,
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionOCRService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
