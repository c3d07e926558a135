package tracker

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/service"
)

// HashFile digests the file at pathToFile with the named algorithm and
// returns the digest as a hex string.
func HashFile(pathToFile, algorithm string) (string, error) {
	digest, err := newDigest(algorithm)
	if err != nil {
		return "", err
	}
	file, err := os.Open(pathToFile)
	if err != nil {
		return "", service.NewFileIOError("open", pathToFile, err)
	}
	defer file.Close()
	if _, err = io.Copy(digest, file); err != nil {
		return "", service.NewFileIOError("read", pathToFile, err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func newDigest(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case constants.AlgMd5:
		return md5.New(), nil
	case constants.AlgSha1:
		return sha1.New(), nil
	case constants.AlgSha256:
		return sha256.New(), nil
	}
	return nil, fmt.Errorf("Unsupported hash algorithm: %s", algorithm)
}
