package thumb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// FileID fingerprints a file by its mtime, size and content. Unless entire
// is set only the first and last chunk bytes are read, so large videos
// hash in constant time.
func FileID(path string, chunk int64, entire bool) (string, error) {
	if chunk <= 0 {
		return "", fmt.Errorf("invalid chunk size %d", chunk)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	h := xxhash.New()
	_, _ = h.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10) + strconv.FormatInt(size, 10))

	if entire {
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
	} else {
		if err := copyChunk(h, f, chunk); err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
		if size > chunk {
			if _, err := f.Seek(-chunk, io.SeekEnd); err != nil {
				return "", fmt.Errorf("hash %s: %w", path, err)
			}
			if err := copyChunk(h, f, chunk); err != nil {
				return "", fmt.Errorf("hash %s: %w", path, err)
			}
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func copyChunk(dst io.Writer, src io.Reader, n int64) error {
	if _, err := io.CopyN(dst, src, n); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ImageName is the cache file name for a file id.
func ImageName(id string) string {
	return id + imageExt
}
