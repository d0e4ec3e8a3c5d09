// Package exiftest builds small in-memory TIFF files carrying EXIF tags, so
// tests can exercise the EXIF and GPS paths without fixture images.
package exiftest

import (
	"bytes"
	"encoding/binary"

	"imgintel/internal/geotag"
)

// TIFF field types.
const (
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

// IFD0 and GPS IFD tag ids.
const (
	tagMake          uint16 = 0x010f
	tagModel         uint16 = 0x0110
	tagGPSPointer    uint16 = 0x8825
	tagLatitudeRef   uint16 = 0x0001
	tagLatitude      uint16 = 0x0002
	tagLongitudeRef  uint16 = 0x0003
	tagLongitude     uint16 = 0x0004
	headerSize              = 8
	ifdEntrySize            = 12
	inlineValueBytes        = 4
)

// Image describes the tags to encode. Empty strings and nil pointers are
// left out of the file.
type Image struct {
	Make  string
	Model string

	Latitude     *geotag.RationalTriple
	LatitudeRef  string
	Longitude    *geotag.RationalTriple
	LongitudeRef string
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

var order = binary.LittleEndian

// Build encodes img as a little-endian TIFF. When any GPS field is set a GPS
// sub-IFD is linked from IFD0.
func Build(img Image) []byte {
	var ifd0 []entry
	if img.Make != "" {
		ifd0 = append(ifd0, asciiEntry(tagMake, img.Make))
	}
	if img.Model != "" {
		ifd0 = append(ifd0, asciiEntry(tagModel, img.Model))
	}

	var gps []entry
	if img.LatitudeRef != "" {
		gps = append(gps, asciiEntry(tagLatitudeRef, img.LatitudeRef))
	}
	if img.Latitude != nil {
		gps = append(gps, rationalEntry(tagLatitude, *img.Latitude))
	}
	if img.LongitudeRef != "" {
		gps = append(gps, asciiEntry(tagLongitudeRef, img.LongitudeRef))
	}
	if img.Longitude != nil {
		gps = append(gps, rationalEntry(tagLongitude, *img.Longitude))
	}

	if len(gps) > 0 {
		ifd0 = append(ifd0, entry{tag: tagGPSPointer, typ: typeLong, count: 1, data: make([]byte, 4)})
	}
	if len(ifd0) == 0 {
		// A TIFF needs at least one directory entry.
		ifd0 = append(ifd0, asciiEntry(tagMake, "exiftest"))
	}

	// The IFD0 length does not depend on the pointer value, so encode once to
	// learn where the GPS directory starts.
	first := encodeIFD(headerSize, ifd0)
	gpsOffset := uint32(headerSize + len(first))
	if len(gps) > 0 {
		order.PutUint32(ifd0[len(ifd0)-1].data, gpsOffset)
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, order, uint16(42))
	_ = binary.Write(&buf, order, uint32(headerSize))
	buf.Write(encodeIFD(headerSize, ifd0))
	if len(gps) > 0 {
		buf.Write(encodeIFD(gpsOffset, gps))
	}
	return buf.Bytes()
}

// encodeIFD lays out a directory starting at offset start, followed by the
// values that do not fit inline.
func encodeIFD(start uint32, entries []entry) []byte {
	dirLen := 2 + ifdEntrySize*len(entries) + 4
	dataPtr := start + uint32(dirLen)

	var dir, data bytes.Buffer
	_ = binary.Write(&dir, order, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&dir, order, e.tag)
		_ = binary.Write(&dir, order, e.typ)
		_ = binary.Write(&dir, order, e.count)

		if len(e.data) <= inlineValueBytes {
			inline := make([]byte, inlineValueBytes)
			copy(inline, e.data)
			dir.Write(inline)
			continue
		}

		_ = binary.Write(&dir, order, dataPtr+uint32(data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&dir, order, uint32(0))

	return append(dir.Bytes(), data.Bytes()...)
}

func asciiEntry(tag uint16, v string) entry {
	b := append([]byte(v), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func rationalEntry(tag uint16, t geotag.RationalTriple) entry {
	b := make([]byte, 0, 24)
	for _, r := range t {
		b = order.AppendUint32(b, r.Num)
		b = order.AppendUint32(b, r.Den)
	}
	return entry{tag: tag, typ: typeRational, count: 3, data: b}
}
