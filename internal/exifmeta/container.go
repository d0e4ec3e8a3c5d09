package exifmeta

import (
	"bytes"
	"encoding/binary"
)

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	exifPrefix   = []byte("Exif\x00\x00")
)

// exifPayload returns the bytes exif.Decode should see. PNG and WEBP keep
// EXIF in a chunk that goexif does not look for, so the chunk body is
// returned instead. ok is false when such a container has no EXIF chunk.
func exifPayload(data []byte) (payload []byte, ok bool) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return pngChunk(data[len(pngSignature):], "eXIf")
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return webpChunk(data[12:], "EXIF")
	default:
		return data, true
	}
}

// pngChunk scans length/type/data/crc chunks for typ.
func pngChunk(data []byte, typ string) ([]byte, bool) {
	for len(data) >= 12 {
		n := binary.BigEndian.Uint32(data[0:4])
		name := string(data[4:8])
		if uint64(n) > uint64(len(data)-12) {
			return nil, false
		}
		if name == typ {
			return data[8 : 8+n], true
		}
		if name == "IEND" {
			break
		}
		data = data[12+n:]
	}
	return nil, false
}

// webpChunk scans RIFF fourcc/size chunks for fourcc. Bodies are padded to
// an even length. Some writers keep the JPEG "Exif\0\0" prefix.
func webpChunk(data []byte, fourcc string) ([]byte, bool) {
	for len(data) >= 8 {
		n := binary.LittleEndian.Uint32(data[4:8])
		name := string(data[0:4])
		if uint64(n) > uint64(len(data)-8) {
			return nil, false
		}
		body := data[8 : 8+n]
		if name == fourcc {
			return bytes.TrimPrefix(body, exifPrefix), true
		}
		next := 8 + int(n) + int(n%2)
		if next > len(data) {
			break
		}
		data = data[next:]
	}
	return nil, false
}
