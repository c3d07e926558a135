package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/moerenett/toppbefaring-services/ingest"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListImages(t *testing.T) {
	folder := t.TempDir()
	fileNames := []string{
		"b.JPG",
		"a.jpg",
		"c.png",
		"notater.txt",
		"e_resized.jpg",
		"f.jpeg",
	}
	for _, fileName := range fileNames {
		require.NoError(t, os.WriteFile(filepath.Join(folder, fileName), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(folder, "underkatalog"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "underkatalog", "g.jpg"), []byte("x"), 0644))

	paths, err := ingest.ListImages(folder)
	require.NoError(t, err)

	names := make([]string, len(paths))
	for i, pathToFile := range paths {
		names[i] = filepath.Base(pathToFile)
	}
	assert.Equal(t, []string{"a.jpg", "b.JPG", "c.png", "f.jpeg"}, names)
	for _, pathToFile := range paths {
		assert.Equal(t, folder, filepath.Dir(pathToFile))
	}
}

func TestListImagesMissingFolder(t *testing.T) {
	_, err := ingest.ListImages(filepath.Join(t.TempDir(), "finnes_ikke"))
	require.Error(t, err)
	var ioError *service.FileIOError
	assert.True(t, errors.As(err, &ioError))
}

func TestListImagesEmptyFolder(t *testing.T) {
	paths, err := ingest.ListImages(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, len(paths))
}
