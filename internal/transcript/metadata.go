package transcript

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

type FileInfo struct {
	Size int64
	SHA1 string
}

// Inspect streams the file once to get its byte length and SHA-1.
func Inspect(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("open audio for checksum: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return FileInfo{}, fmt.Errorf("hash audio: %w", err)
	}

	return FileInfo{Size: n, SHA1: hex.EncodeToString(h.Sum(nil))}, nil
}
