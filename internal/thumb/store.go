package thumb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv"
)

// store holds the generated images, one flat file per key.
type store struct {
	dir string
	d   *diskv.Diskv
}

func newStore(dir string) *store {
	return &store{
		dir: dir,
		d: diskv.New(diskv.Options{
			BasePath:  dir,
			Transform: func(string) []string { return []string{} },
			PathPerm:  0700,
			FilePerm:  0600,
			// Images are handed to kitty by path, never read back.
			CacheSizeMax: 0,
		}),
	}
}

func (s *store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *store) has(key string) bool {
	return s.d.Has(key)
}

func (s *store) stat(key string) (os.FileInfo, error) {
	return os.Stat(s.path(key))
}

// importFile moves a finished image into the store under key.
func (s *store) importFile(src, key string) error {
	return s.d.Import(src, key, true)
}

func (s *store) erase(key string) error {
	err := s.d.Erase(key)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// keys lists the image names in the store.
func (s *store) keys() []string {
	var keys []string
	for key := range s.d.Keys(nil) {
		if strings.HasSuffix(key, imageExt) {
			keys = append(keys, key)
		}
	}
	return keys
}
