package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"math"
)

// NewJPEG returns an encoded JPEG of the given size, filled with a
// gradient so resized copies have something to interpolate.
func NewJPEG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 0x40,
				A: 0xff,
			})
		}
	}
	buf := &bytes.Buffer{}
	jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

// NewJPEGWithGPS returns an encoded JPEG carrying an Exif APP1 segment
// that records the given position.
func NewJPEGWithGPS(width, height int, lat, lon float64) []byte {
	encoded := NewJPEG(width, height)
	segment := ExifGPSSegment(lat, lon)
	withExif := make([]byte, 0, len(encoded)+len(segment))
	withExif = append(withExif, encoded[:2]...)
	withExif = append(withExif, segment...)
	withExif = append(withExif, encoded[2:]...)
	return withExif
}

// ExifGPSSegment builds a minimal Exif APP1 segment whose GPS IFD holds
// the given position as degree/minute/second rationals. Latitudes south
// of the equator and longitudes west of Greenwich come in negative and
// go out as S and W references.
func ExifGPSSegment(lat, lon float64) []byte {
	latRef, latAbs := refValue('N', 'S', lat)
	lonRef, lonAbs := refValue('E', 'W', lon)

	tiff := &bytes.Buffer{}
	tiff.WriteString("II")
	binary.Write(tiff, binary.LittleEndian, uint16(0x2a))
	binary.Write(tiff, binary.LittleEndian, uint32(8))

	// IFD0 holds nothing but the pointer to the GPS sub-IFD, which
	// starts right after it at offset 26.
	binary.Write(tiff, binary.LittleEndian, uint16(1))
	writeEntry(tiff, 0x8825, 4, 1, 26)
	binary.Write(tiff, binary.LittleEndian, uint32(0))

	// GPS IFD: version, refs inline, rational triplets out of line
	// at offsets 92 (latitude) and 116 (longitude).
	binary.Write(tiff, binary.LittleEndian, uint16(5))
	writeEntry(tiff, 0x0000, 1, 4, 0x0302)
	writeEntry(tiff, 0x0001, 2, 2, uint32(latRef))
	writeEntry(tiff, 0x0002, 5, 3, 92)
	writeEntry(tiff, 0x0003, 2, 2, uint32(lonRef))
	writeEntry(tiff, 0x0004, 5, 3, 116)
	binary.Write(tiff, binary.LittleEndian, uint32(0))

	writeRationals(tiff, latAbs)
	writeRationals(tiff, lonAbs)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	segment := []byte{0xff, 0xe1, 0x00, 0x00}
	binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))
	return append(segment, payload...)
}

func refValue(pos, neg byte, value float64) (byte, float64) {
	if value < 0 {
		return neg, -value
	}
	return pos, value
}

func writeEntry(buf *bytes.Buffer, tag, fieldType uint16, count, value uint32) {
	binary.Write(buf, binary.LittleEndian, tag)
	binary.Write(buf, binary.LittleEndian, fieldType)
	binary.Write(buf, binary.LittleEndian, count)
	binary.Write(buf, binary.LittleEndian, value)
}

func writeRationals(buf *bytes.Buffer, degrees float64) {
	wholeDegrees := math.Floor(degrees)
	minutes := math.Floor((degrees - wholeDegrees) * 60)
	seconds := (degrees-wholeDegrees)*3600 - minutes*60
	binary.Write(buf, binary.LittleEndian, uint32(wholeDegrees))
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, uint32(minutes))
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, uint32(math.Round(seconds*10000)))
	binary.Write(buf, binary.LittleEndian, uint32(10000))
}
