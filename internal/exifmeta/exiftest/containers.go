package exiftest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// BuildJPEG wraps the TIFF from Build in a JPEG APP1 "Exif" segment, the way
// cameras store it.
func BuildJPEG(img Image) []byte {
	payload := append([]byte("Exif\x00\x00"), Build(img)...)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// BuildPNG returns a 1x1 PNG skeleton carrying the TIFF from Build in an
// eXIf chunk.
func BuildPNG(img Image) []byte {
	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	writePNGChunk(&buf, "IHDR", ihdr)
	writePNGChunk(&buf, "eXIf", Build(img))
	writePNGChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

// BuildWEBP returns a RIFF/WEBP container with a VP8X header chunk and the
// TIFF from Build in an EXIF chunk.
func BuildWEBP(img Image) []byte {
	var chunks bytes.Buffer
	// VP8X with the EXIF flag set, 1x1 canvas.
	writeRIFFChunk(&chunks, "VP8X", []byte{0x08, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	writeRIFFChunk(&chunks, "EXIF", Build(img))

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+chunks.Len()))
	buf.WriteString("WEBP")
	buf.Write(chunks.Bytes())
	return buf.Bytes()
}

func writePNGChunk(buf *bytes.Buffer, typ string, data []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	buf.WriteString(typ)
	buf.Write(data)
	_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
}

func writeRIFFChunk(buf *bytes.Buffer, fourcc string, data []byte) {
	buf.WriteString(fourcc)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}
