package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const fingerprintChunkSize = 4096

// FingerprintFile computes the content fingerprint of a file as a lowercase
// hex MD5 digest, streamed so large PDFs never load fully into memory. The
// digest addresses content, not integrity, so MD5's collision weakness does
// not matter here.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, fingerprintChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
