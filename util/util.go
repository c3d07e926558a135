package util

import (
	"path/filepath"
	"strings"

	"github.com/moerenett/toppbefaring-services/constants"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// AlgorithmIsValid returns true if the named content hash algorithm is
// one the upload log supports.
func AlgorithmIsValid(algorithm string) bool {
	return StringListContains(constants.DigestAlgorithms, algorithm)
}

// LooksLikeImage returns true if the file name has one of the photo
// extensions the scanner accepts. The check is case-insensitive
// because cameras write .JPG as often as .jpg.
func LooksLikeImage(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return StringListContains(constants.ImageExtensions, ext)
}

// IsResizedCopy returns true if the file name marks a downscaled copy
// left behind by an earlier non-overwrite resize. The scanner skips
// these so derived files never enter the pipeline as new photos.
func IsResizedCopy(fileName string) bool {
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	return strings.HasSuffix(stem, constants.ResizedFileSuffix)
}
