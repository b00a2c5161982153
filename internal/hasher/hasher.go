// Package hasher computes xxHash64 content hashes for source images and
// preview filenames.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// DefaultLen is the hex length used for content-addressed filenames: 16
// hex chars (64 bits), collision-safe for practical asset counts.
const DefaultLen = 16

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen (0 = full).
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// ContentHashFile streams the file at path through ContentHashReader.
func ContentHashFile(path string, hexLen int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sum, err := ContentHashReader(f, hexLen)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return sum, nil
}

// PreviewName returns the content-addressed filename of a rendered
// placeholder: the same hash at the same size and format always maps to the
// same file.
func PreviewName(hash string, w, h int, punch float64, ext string) string {
	key := fmt.Sprintf("%s|%dx%d|%g", hash, w, h, punch)
	return ContentHash([]byte(key), DefaultLen) + "." + ext
}

func format(sum uint64, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, sum))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
