package exifmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"imgintel/internal/exifmeta/exiftest"
)

func TestExifPayload(t *testing.T) {
	tiff := exiftest.Build(exiftest.Image{Make: "Canon"})

	tests := []struct {
		name string
		data []byte
		want []byte
		ok   bool
	}{
		{"tiff passes through", tiff, tiff, true},
		{"jpeg passes through", []byte{0xFF, 0xD8, 0xFF}, []byte{0xFF, 0xD8, 0xFF}, true},
		{"png chunk", exiftest.BuildPNG(exiftest.Image{Make: "Canon"}), tiff, true},
		{"webp chunk", exiftest.BuildWEBP(exiftest.Image{Make: "Canon"}), tiff, true},
		{"png without eXIf", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x00IEND\xaeB`\x82"), nil, false},
		{"png truncated chunk", []byte("\x89PNG\r\n\x1a\n\x00\x00\x10\x00eXIfII*\x00"), nil, false},
		{"webp truncated chunk", []byte("RIFF\x20\x00\x00\x00WEBPEXIF\xff\x00\x00\x00II"), nil, false},
		{"webp with Exif prefix", append([]byte("RIFF\x00\x00\x00\x00WEBPEXIF\x0a\x00\x00\x00Exif\x00\x00"), 'I', 'I', '*', 0), []byte("II*\x00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := exifPayload(tt.data)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
