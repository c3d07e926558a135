// Package imaging reads positions out of photo Exif blocks and scales
// photos down for upload.
package imaging

import (
	"os"

	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/paulmach/orb"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// ExtractGPS reads the GPS position from the Exif block of the image
// at pathToFile. Returns a FileIOError if the file can't be opened and
// a GeoExtractionError if it has no Exif block or no usable position.
func ExtractGPS(pathToFile string) (orb.Point, error) {
	file, err := os.Open(pathToFile)
	if err != nil {
		return orb.Point{}, service.NewFileIOError("open", pathToFile, err)
	}
	defer file.Close()
	exifData, err := exif.Decode(file)
	if err != nil {
		return orb.Point{}, service.NewGeoExtractionError(pathToFile, err)
	}
	lat, lon, err := exifData.LatLong()
	if err != nil {
		return orb.Point{}, service.NewGeoExtractionError(pathToFile, err)
	}
	return orb.Point{lon, lat}, nil
}
