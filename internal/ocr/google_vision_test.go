package ocr_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"imgintel/internal/ocr"
)

type fakeAnnotator struct {
	resp   *visionpb.BatchAnnotateImagesResponse
	err    error
	got    *visionpb.BatchAnnotateImagesRequest
	closed bool
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error {
	f.closed = true
	return nil
}

func textResponse(text string, pages ...*visionpb.Page) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{
				FullTextAnnotation: &visionpb.TextAnnotation{Text: text, Pages: pages},
			},
		},
	}
}

func page(confidence float32, langs ...string) *visionpb.Page {
	p := &visionpb.Page{Confidence: confidence, Property: &visionpb.TextAnnotation_TextProperty{}}
	for _, l := range langs {
		p.Property.DetectedLanguages = append(p.Property.DetectedLanguages, &visionpb.TextAnnotation_DetectedLanguage{LanguageCode: l})
	}
	return p
}

func TestProcessImageWithMetadata(t *testing.T) {
	client := &fakeAnnotator{resp: textResponse("STOP\nOne way", page(0.9, "en"), page(0.7, "de", "en"))}
	svc := ocr.NewGoogleVisionOCRServiceWithClient(client)

	result, err := svc.ProcessImageWithMetadata(context.Background(), bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)

	assert.Equal(t, "STOP\nOne way", result.Text)
	assert.InDelta(t, 0.8, result.Confidence, 1e-6)
	assert.Equal(t, []string{"de", "en"}, result.LanguageCodes)
	assert.False(t, result.ProcessedAt.IsZero())

	require.Len(t, client.got.GetRequests(), 1)
	req := client.got.GetRequests()[0]
	assert.Equal(t, []byte("jpeg bytes"), req.GetImage().GetContent())
	require.Len(t, req.GetFeatures(), 1)
	assert.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, req.GetFeatures()[0].GetType())
}

func TestProcessImageFallsBackToEntityText(t *testing.T) {
	client := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{TextAnnotations: []*visionpb.EntityAnnotation{{Description: "EXIT", Locale: "en"}}},
		},
	}}
	svc := ocr.NewGoogleVisionOCRServiceWithClient(client)

	result, err := svc.ProcessImageWithMetadata(context.Background(), strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "EXIT", result.Text)
	assert.Equal(t, []string{"en"}, result.LanguageCodes)
	assert.Zero(t, result.Confidence)
}

func TestProcessImage(t *testing.T) {
	svc := ocr.NewGoogleVisionOCRServiceWithClient(&fakeAnnotator{resp: textResponse("hello")})

	text, err := svc.ProcessImage(context.Background(), strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestProcessImageErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeAnnotator
		input  []byte
		want   error
	}{
		{
			name:   "empty image",
			client: &fakeAnnotator{},
			input:  nil,
			want:   ocr.ErrEmptyImage,
		},
		{
			name:   "too large",
			client: &fakeAnnotator{},
			input:  make([]byte, ocr.MaxImageSizeBytes+1),
			want:   ocr.ErrImageTooLarge,
		},
		{
			name:   "api failure",
			client: &fakeAnnotator{err: errors.New("rpc error: code = Unavailable")},
			input:  []byte("img"),
			want:   ocr.ErrOCRFailed,
		},
		{
			name:   "no responses",
			client: &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{}},
			input:  []byte("img"),
			want:   ocr.ErrOCRFailed,
		},
		{
			name: "per-image error",
			client: &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{Error: &status.Status{Code: 3, Message: "Bad image data."}}},
			}},
			input: []byte("img"),
			want:  ocr.ErrOCRFailed,
		},
		{
			name:   "blank text",
			client: &fakeAnnotator{resp: textResponse("  \n ")},
			input:  []byte("img"),
			want:   ocr.ErrNoText,
		},
		{
			name:   "canceled",
			client: &fakeAnnotator{err: context.Canceled},
			input:  []byte("img"),
			want:   context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ocr.NewGoogleVisionOCRServiceWithClient(tt.client)

			result, err := svc.ProcessImageWithMetadata(context.Background(), bytes.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)

			var ocrErr *ocr.OCRError
			require.ErrorAs(t, err, &ocrErr)
			assert.Equal(t, "ProcessImageWithMetadata", ocrErr.Op)
		})
	}
}

func TestClose(t *testing.T) {
	client := &fakeAnnotator{}
	svc := ocr.NewGoogleVisionOCRServiceWithClient(client)

	require.NoError(t, svc.Close())
	assert.True(t, client.closed)
}

func TestWrapOCRErrorKeepsExistingWrapper(t *testing.T) {
	inner := ocr.NewOCRError("inner", ocr.ErrNoText, "")

	assert.Same(t, inner, ocr.WrapOCRError("outer", inner, "details"))
	assert.Nil(t, ocr.WrapOCRError("outer", nil, ""))
	assert.EqualError(t, ocr.NewOCRError("Op", ocr.ErrEmptyImage, "why"), "ocr: Op failed: why: image is empty")
}
