package ingest

import (
	"os"
	"path/filepath"

	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/util"
)

// ListImages returns the full paths of the photos in folder, in the
// name order os.ReadDir reports. Subdirectories are not descended
// into. Files without an image extension are ignored, and so are the
// resized copies an earlier run left next to their originals, since
// uploading those again would double every photo that was ever
// resized.
func ListImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, service.NewFileIOError("read", folder, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !util.LooksLikeImage(fileName) || util.IsResizedCopy(fileName) {
			continue
		}
		paths = append(paths, filepath.Join(folder, fileName))
	}
	return paths, nil
}
