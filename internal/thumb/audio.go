package thumb

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ErrNoCover means an audio file carries no embedded picture.
var ErrNoCover = errors.New("no embedded cover")

// AudioCover returns the picture embedded in an audio file's tags.
func AudioCover(path string) (*tag.Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, ErrNoCover
		}
		// Files too short or mangled to carry tags have no cover either.
		return nil, fmt.Errorf("%w: %v", ErrNoCover, err)
	}
	p := m.Picture()
	if p == nil || len(p.Data) == 0 {
		return nil, ErrNoCover
	}
	return p, nil
}

// HasCover reports whether path has an embedded cover.
func HasCover(path string) bool {
	_, err := AudioCover(path)
	return err == nil
}
