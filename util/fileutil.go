package util

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// FileExists returns true if the file at path exists.
// This returns false if the file exists but the user
// does not have permission to stat it.
func FileExists(pathToFile string) bool {
	_, err := os.Stat(pathToFile)
	return err == nil
}

// ExpandTilde expands the tilde at the beginning of a file path to the
// current user's home directory. Paths without a leading tilde come
// back unchanged.
func ExpandTilde(filePath string) (string, error) {
	if filePath != "~" && !strings.HasPrefix(filePath, "~/") {
		return filePath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if filePath == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, filePath[2:]), nil
}

// LooksSafeToDelete returns true if pathToFile looks safe to delete.
// To be safe, the path must be at least minLength characters long and
// contain at least minSeparators path separators. This is a guard
// against "rm -rf /" style accidents with paths built from config
// values.
func LooksSafeToDelete(pathToFile string, minLength, minSeparators int) bool {
	separatorCount := strings.Count(pathToFile, string(os.PathSeparator))
	return len(pathToFile) >= minLength && separatorCount >= minSeparators
}

// ProjectRoot returns the absolute path of the project root directory.
// This is used only in testing, so tests can locate fixtures without
// caring what directory they run from.
func ProjectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	absPath, _ := filepath.Abs(path.Join(thisFile, "..", ".."))
	return absPath
}
