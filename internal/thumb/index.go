package thumb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Index maps media paths to image names and back. Both directions are kept
// so a cleanup pass can start from either side.
type Index struct {
	Media map[string]string `json:"media"`
	Cache map[string]string `json:"cache"`
}

func newIndex() *Index {
	return &Index{Media: make(map[string]string), Cache: make(map[string]string)}
}

// Image returns the image recorded for media.
func (ix *Index) Image(media string) (string, bool) {
	image, ok := ix.Media[media]
	return image, ok
}

// Set records media -> image. It returns the image media pointed at before,
// if that differs, so the caller can drop it. Any other media that claimed
// image loses its entry.
func (ix *Index) Set(media, image string) (stale string, changed bool) {
	old, had := ix.Media[media]
	if had && old == image && ix.Cache[image] == media {
		return "", false
	}
	if had && old != image {
		delete(ix.Cache, old)
		stale = old
	}
	if prev, ok := ix.Cache[image]; ok && prev != media {
		delete(ix.Media, prev)
	}
	ix.Media[media] = image
	ix.Cache[image] = media
	return stale, true
}

// RemoveMedia drops media and the image entry it points at.
func (ix *Index) RemoveMedia(media string) (image string, ok bool) {
	image, ok = ix.Media[media]
	if !ok {
		return "", false
	}
	delete(ix.Media, media)
	if ix.Cache[image] == media {
		delete(ix.Cache, image)
	}
	return image, true
}

// RemoveImage drops image and the media entry that points at it.
func (ix *Index) RemoveImage(image string) (media string, ok bool) {
	media, ok = ix.Cache[image]
	if !ok {
		return "", false
	}
	delete(ix.Cache, image)
	if ix.Media[media] == image {
		delete(ix.Media, media)
	}
	return media, true
}

// Len is the number of recorded media files.
func (ix *Index) Len() int { return len(ix.Media) }

// loadIndex reads path. A missing or empty file is an empty index; a
// corrupt one is moved aside to path.corrupt and replaced by an empty
// index. The two-element array layout of older caches is accepted.
func loadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newIndex(), nil
		}
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return newIndex(), nil
	}

	ix, err := decodeIndex(data)
	if err != nil {
		// Keep the broken file for inspection instead of silently discarding it.
		_ = os.Rename(path, path+".corrupt")
		return newIndex(), nil
	}
	return ix, nil
}

func decodeIndex(data []byte) (*Index, error) {
	ix := newIndex()
	if data[0] == '[' {
		var legacy []map[string]string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, err
		}
		if len(legacy) != 2 {
			return nil, fmt.Errorf("legacy index has %d maps, want 2", len(legacy))
		}
		for k, v := range legacy[0] {
			ix.Media[k] = v
		}
		for k, v := range legacy[1] {
			ix.Cache[k] = v
		}
		return ix, nil
	}
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, err
	}
	if ix.Media == nil {
		ix.Media = make(map[string]string)
	}
	if ix.Cache == nil {
		ix.Cache = make(map[string]string)
	}
	return ix, nil
}

// save writes the index through a temp file and rename.
func (ix *Index) save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ix); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// lockFile takes an exclusive advisory lock on path, creating it if needed.
func lockFile(path string) (unlock func(), err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
