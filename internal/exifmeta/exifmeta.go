// Package exifmeta reads EXIF tags out of image data and adapts the GPS tags
// into the typed input expected by the geotag resolver.
//
// Decoding is delegated to github.com/rwcarlsen/goexif. JPEG, TIFF and raw
// EXIF blocks are passed to it directly; for PNG (eXIf chunk) and WEBP (EXIF
// chunk) the embedded block is cut out first. Other containers yield
// ErrNoMetadata.
package exifmeta

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"imgintel/internal/geotag"
)

// Metadata is the decoded EXIF content of one image.
type Metadata struct {
	x *exif.Exif
}

// Empty returns metadata with no tags.
func Empty() *Metadata {
	return &Metadata{}
}

// Read decodes the EXIF block from r. Non-critical decode errors, such as a
// broken sub-directory, are ignored and the tags read so far are kept.
func Read(r io.Reader) (*Metadata, error) {
	const op = "Read"

	data, err := io.ReadAll(r)
	if err != nil {
		return Empty(), wrapMetadataError(op, err, "failed to read image")
	}
	payload, ok := exifPayload(data)
	if !ok {
		return Empty(), wrapMetadataError(op, ErrNoMetadata, "no EXIF chunk")
	}

	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Empty(), wrapMetadataError(op, ErrNoMetadata, err.Error())
	}
	return &Metadata{x: x}, nil
}

// Len returns the number of tags.
func (m *Metadata) Len() int {
	return len(m.Tags())
}

// Tags returns every tag keyed by its EXIF field name, formatted for display.
func (m *Metadata) Tags() map[string]string {
	tags := make(map[string]string)
	if m == nil || m.x == nil {
		return tags
	}
	_ = m.x.Walk(walkFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		tags[string(name)] = formatTag(tag)
		return nil
	}))
	return tags
}

// GPS returns the four GPS tags the resolver consumes. Tags that are missing
// or do not have the expected type are left nil.
func (m *Metadata) GPS() geotag.Input {
	if m == nil || m.x == nil {
		return geotag.Input{}
	}
	return geotag.Input{
		Latitude:     m.triple(exif.GPSLatitude),
		LatitudeRef:  m.ref(exif.GPSLatitudeRef),
		Longitude:    m.triple(exif.GPSLongitude),
		LongitudeRef: m.ref(exif.GPSLongitudeRef),
	}
}

func (m *Metadata) triple(name exif.FieldName) *geotag.RationalTriple {
	tag, err := m.x.Get(name)
	if err != nil || tag.Format() != tiff.RatVal || tag.Count != 3 {
		return nil
	}

	var t geotag.RationalTriple
	for i := range t {
		num, den, err := tag.Rat2(i)
		if err != nil || !fitsUint32(num) || !fitsUint32(den) {
			return nil
		}
		t[i] = geotag.R(uint32(num), uint32(den))
	}
	return &t
}

func (m *Metadata) ref(name exif.FieldName) *geotag.HemisphereRef {
	tag, err := m.x.Get(name)
	if err != nil {
		return nil
	}
	v, err := tag.StringVal()
	if err != nil {
		return nil
	}
	return geotag.Ref(strings.TrimRight(v, "\x00"))
}

func fitsUint32(v int64) bool {
	return v >= 0 && v <= math.MaxUint32
}

func formatTag(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		v, err := tag.StringVal()
		if err == nil {
			return strings.TrimRight(v, "\x00")
		}
	case tiff.RatVal:
		parts := make([]string, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return tag.String()
			}
			parts = append(parts, fmt.Sprintf("%d/%d", num, den))
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return tag.String()
}

type walkFunc func(name exif.FieldName, tag *tiff.Tag) error

func (f walkFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return f(name, tag)
}
