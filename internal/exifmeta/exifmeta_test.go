package exifmeta_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgintel/internal/exifmeta"
	"imgintel/internal/exifmeta/exiftest"
	"imgintel/internal/geotag"
)

func pittsburgh() exiftest.Image {
	return exiftest.Image{
		Make:         "Canon",
		Model:        "EOS 5D",
		Latitude:     geotag.Triple(geotag.DMS(40, 26, 46)),
		LatitudeRef:  "N",
		Longitude:    geotag.Triple(geotag.DMS(79, 56, 55)),
		LongitudeRef: "W",
	}
}

func TestReadGPS(t *testing.T) {
	meta, err := exifmeta.Read(bytes.NewReader(exiftest.Build(pittsburgh())))
	require.NoError(t, err)

	in := meta.GPS()
	require.NotNil(t, in.Latitude)
	require.NotNil(t, in.LatitudeRef)
	require.NotNil(t, in.Longitude)
	require.NotNil(t, in.LongitudeRef)

	assert.Equal(t, geotag.DMS(40, 26, 46), *in.Latitude)
	assert.Equal(t, geotag.North, *in.LatitudeRef)
	assert.Equal(t, geotag.DMS(79, 56, 55), *in.Longitude)
	assert.Equal(t, geotag.West, *in.LongitudeRef)

	lat, lon, ok := geotag.Resolve(in).LatLon()
	require.True(t, ok)
	assert.InDelta(t, 40.4461111, lat, 1e-6)
	assert.InDelta(t, -79.9486111, lon, 1e-6)
}

func TestReadTags(t *testing.T) {
	meta, err := exifmeta.Read(bytes.NewReader(exiftest.Build(pittsburgh())))
	require.NoError(t, err)

	tags := meta.Tags()
	assert.Equal(t, "Canon", tags["Make"])
	assert.Equal(t, "EOS 5D", tags["Model"])
	assert.Equal(t, "N", tags["GPSLatitudeRef"])
	assert.Equal(t, "[40/1, 26/1, 46/1]", tags["GPSLatitude"])
	assert.Equal(t, "[79/1, 56/1, 55/1]", tags["GPSLongitude"])
	assert.Equal(t, len(tags), meta.Len())
}

func TestReadPartialGPS(t *testing.T) {
	img := pittsburgh()
	img.LongitudeRef = ""

	meta, err := exifmeta.Read(bytes.NewReader(exiftest.Build(img)))
	require.NoError(t, err)

	in := meta.GPS()
	assert.NotNil(t, in.Latitude)
	assert.Nil(t, in.LongitudeRef)
	assert.False(t, geotag.Resolve(in).Present())
}

func TestReadZeroDenominatorReachesResolver(t *testing.T) {
	img := pittsburgh()
	broken := geotag.DMS(40, 26, 46)
	broken[2] = geotag.R(46, 0)
	img.Latitude = &broken

	meta, err := exifmeta.Read(bytes.NewReader(exiftest.Build(img)))
	require.NoError(t, err)

	in := meta.GPS()
	require.NotNil(t, in.Latitude)
	assert.Equal(t, uint32(0), in.Latitude[2].Den)
	assert.False(t, geotag.Resolve(in).Present())
	assert.Equal(t, "[40/1, 26/1, 46/0]", meta.Tags()["GPSLatitude"])
}

func TestReadWithoutGPS(t *testing.T) {
	meta, err := exifmeta.Read(bytes.NewReader(exiftest.Build(exiftest.Image{Make: "Nikon"})))
	require.NoError(t, err)

	assert.Equal(t, geotag.Input{}, meta.GPS())
	assert.Equal(t, "Nikon", meta.Tags()["Make"])
}

func TestReadNoExif(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

	meta, err := exifmeta.Read(bytes.NewReader(png))
	require.Error(t, err)
	assert.ErrorIs(t, err, exifmeta.ErrNoMetadata)

	var metaErr *exifmeta.MetadataError
	require.ErrorAs(t, err, &metaErr)
	assert.Equal(t, "Read", metaErr.Op)

	require.NotNil(t, meta)
	assert.Empty(t, meta.Tags())
	assert.Equal(t, 0, meta.Len())
	assert.Equal(t, geotag.Input{}, meta.GPS())
}

func TestEmptyAndNilMetadata(t *testing.T) {
	var nilMeta *exifmeta.Metadata
	assert.Empty(t, nilMeta.Tags())
	assert.Equal(t, geotag.Input{}, nilMeta.GPS())
	assert.Empty(t, exifmeta.Empty().Tags())
}

func TestReadGPSFromContainers(t *testing.T) {
	tests := []struct {
		name  string
		build func(exiftest.Image) []byte
	}{
		{"tiff", exiftest.Build},
		{"jpeg app1", exiftest.BuildJPEG},
		{"png eXIf", exiftest.BuildPNG},
		{"webp EXIF", exiftest.BuildWEBP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := exifmeta.Read(bytes.NewReader(tt.build(pittsburgh())))
			require.NoError(t, err)
			assert.Equal(t, "Canon", meta.Tags()["Make"])

			lat, lon, ok := geotag.Resolve(meta.GPS()).LatLon()
			require.True(t, ok)
			assert.InDelta(t, 40.4461111, lat, 1e-6)
			assert.InDelta(t, -79.9486111, lon, 1e-6)
		})
	}
}
