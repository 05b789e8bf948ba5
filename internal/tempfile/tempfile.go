// Package tempfile creates uniquely named private files.
package tempfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Name returns [prefix-]<uuid>.
func Name(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// Create makes an empty file named by Name in dir with mode 0600 and
// returns its path.
func Create(dir, prefix string) (string, error) {
	path := filepath.Join(dir, Name(prefix))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	// umask may have cleared owner bits
	return path, os.Chmod(path, 0o600)
}
