package imaging

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/nfnt/resize"

	_ "golang.org/x/image/bmp"
)

// ResizeOptions says how far to scale a photo down before upload.
// Bounds of zero or less are ignored, so MaxWidth 1920 with MaxHeight
// zero bounds only the width.
type ResizeOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Overwrite bool
}

// ResizeResult reports where the upload copy of a photo ended up. When
// the photo already fits inside the bounds, Path is the original file
// and Resized is false.
type ResizeResult struct {
	Path           string
	Resized        bool
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
}

// Resize scales the image at pathToFile down to fit inside the bounds
// in options, preserving the aspect ratio, and writes the copy as a
// JPEG next to the original unless options say to overwrite it. The
// Exif block of a JPEG source is carried over to the copy, so the GPS
// position survives. Images already inside the bounds are left alone.
func Resize(pathToFile string, options ResizeOptions) (*ResizeResult, error) {
	data, err := os.ReadFile(pathToFile)
	if err != nil {
		return nil, service.NewFileIOError("read", pathToFile, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, service.NewFileIOError("decode", pathToFile, err)
	}
	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()
	width, height := boundedSize(originalWidth, originalHeight,
		options.MaxWidth, options.MaxHeight)
	result := &ResizeResult{
		Path:           pathToFile,
		Width:          width,
		Height:         height,
		OriginalWidth:  originalWidth,
		OriginalHeight: originalHeight,
	}
	if width == originalWidth && height == originalHeight {
		return result, nil
	}

	scaled := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	quality := options.Quality
	if quality <= 0 {
		quality = constants.DefaultJpegQuality
	}
	buf := &bytes.Buffer{}
	if err = jpeg.Encode(buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, service.NewFileIOError("encode", pathToFile, err)
	}
	encoded := withExif(buf.Bytes(), exifSegment(data))

	outputPath := resizedSiblingPath(pathToFile)
	if options.Overwrite {
		outputPath = pathToFile
	}
	if err = os.WriteFile(outputPath, encoded, 0644); err != nil {
		return nil, service.NewFileIOError("write", outputPath, err)
	}
	result.Path = outputPath
	result.Resized = true
	return result, nil
}

// boundedSize scales width and height down together until both fit
// inside the given bounds. Dimensions already inside come back as is.
func boundedSize(width, height, maxWidth, maxHeight int) (int, int) {
	ratio := math.Inf(1)
	if maxWidth > 0 {
		ratio = float64(maxWidth) / float64(width)
	}
	if maxHeight > 0 {
		heightRatio := float64(maxHeight) / float64(height)
		if heightRatio < ratio {
			ratio = heightRatio
		}
	}
	if ratio >= 1 {
		return width, height
	}
	scaledWidth := int(math.Round(float64(width) * ratio))
	scaledHeight := int(math.Round(float64(height) * ratio))
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	if scaledHeight < 1 {
		scaledHeight = 1
	}
	return scaledWidth, scaledHeight
}

// resizedSiblingPath turns /photos/IMG_0131.jpg into
// /photos/IMG_0131_resized.jpg. The copy is always a JPEG, whatever
// the source was.
func resizedSiblingPath(pathToFile string) string {
	ext := filepath.Ext(pathToFile)
	stem := strings.TrimSuffix(pathToFile, ext)
	return stem + constants.ResizedFileSuffix + ".jpg"
}

// exifSegment returns the APP1 Exif segment of an encoded JPEG, marker
// bytes included, or nil if the image has none. The scan stops at the
// start of the image data, where Exif can no longer appear.
func exifSegment(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil
	}
	offset := 2
	for offset+4 <= len(data) {
		if data[offset] != 0xff {
			return nil
		}
		marker := data[offset+1]
		if marker == 0xd8 || marker == 0xd9 || marker == 0xda {
			return nil
		}
		segmentEnd := offset + 2 + int(binary.BigEndian.Uint16(data[offset+2:]))
		if segmentEnd > len(data) {
			return nil
		}
		if marker == 0xe1 && bytes.HasPrefix(data[offset+4:segmentEnd], []byte("Exif\x00\x00")) {
			return data[offset:segmentEnd]
		}
		offset = segmentEnd
	}
	return nil
}

// withExif splices an Exif APP1 segment into an encoded JPEG, right
// after the SOI marker. Go's encoder writes no Exif of its own.
func withExif(encoded, segment []byte) []byte {
	if len(segment) == 0 {
		return encoded
	}
	out := make([]byte, 0, len(encoded)+len(segment))
	out = append(out, encoded[:2]...)
	out = append(out, segment...)
	out = append(out, encoded[2:]...)
	return out
}
