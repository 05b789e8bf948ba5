// Package preview renders a file for lf's preview pane: images through the
// kitty graphics protocol, everything else as text on stdout.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/shell"
)

// ErrNoCache is returned after drawing an image. lf must not cache such a
// preview, or it would never redraw the image.
var ErrNoCache = errors.New("preview drawn on the terminal")

const classificationHeader = "----- File Type Classification -----"

// Place is the preview pane geometry lf passes to the previewer.
type Place struct {
	W, H, X, Y int
}

func (p Place) String() string {
	return fmt.Sprintf("%dx%d@%dx%d", p.W, p.H, p.X, p.Y)
}

// ParsePlace reads the four numeric arguments lf appends.
func ParsePlace(args []string) (*Place, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) != 4 {
		return nil, fmt.Errorf("want width height x y, got %d values", len(args))
	}
	var v [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid geometry value %q", a)
		}
		v[i] = n
	}
	return &Place{W: v[0], H: v[1], X: v[2], Y: v[3]}, nil
}

// Thumbnailer produces a displayable image for a media file.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, media string, mt mime.Type) (string, error)
}

// Previewer dispatches a file to the right preview tool.
type Previewer struct {
	Runner   shell.Runner
	Detector *mime.Detector
	Thumbs   Thumbnailer
	// HasCover reports whether an audio file has embedded art.
	HasCover func(path string) bool
	// LineLimit truncates single-line text; lf cannot show very long lines.
	LineLimit int
	Stdout    io.Writer
	// OpenTTY returns the terminal images are drawn on.
	OpenTTY func() (io.WriteCloser, error)
	Logger  *zap.Logger
}

// Preview writes a preview of file. It returns ErrNoCache after drawing
// an image.
func (p *Previewer) Preview(ctx context.Context, file string, place *Place) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return p.classify(ctx, file)
	}

	mt, err := p.Detector.Detect(ctx, file)
	if err != nil {
		return err
	}
	p.Logger.Debug("preview", zap.String("file", file), zap.Stringer("mime", mt))

	switch {
	case mt.Media == "image":
		return p.showImage(ctx, file, place)
	case mt.Media == "video", mt == mime.PDF, mt == mime.EPUB:
		return p.showThumbnail(ctx, file, mt, place)
	case mt.Media == "audio":
		if p.HasCover != nil && p.HasCover(file) {
			return p.showThumbnail(ctx, file, mt, place)
		}
		return p.stream(ctx, "mediainfo", "--", file)
	}

	if h, ok := handlers[mt.String()]; ok {
		return h(ctx, p, file, mt)
	}
	if mt.Media == "text" {
		return p.text(ctx, file)
	}
	return p.classify(ctx, file)
}

func (p *Previewer) showThumbnail(ctx context.Context, file string, mt mime.Type, place *Place) error {
	image, err := p.Thumbs.Thumbnail(ctx, file, mt)
	if err != nil {
		return err
	}
	return p.showImage(ctx, image, place)
}

func (p *Previewer) showImage(ctx context.Context, image string, place *Place) error {
	tty, err := p.OpenTTY()
	if err != nil {
		return err
	}
	defer tty.Close()

	args := []string{"icat", "--stdin", "no", "--transfer-mode", "memory"}
	if place != nil {
		args = append(args, "--place", place.String())
	}
	args = append(args, image)
	if err := p.Runner.Run(ctx, shell.Cmd{Name: "kitten", Args: args, Stdout: tty}); err != nil {
		return err
	}
	return ErrNoCache
}

func (p *Previewer) stream(ctx context.Context, name string, args ...string) error {
	return p.Runner.Run(ctx, shell.Cmd{Name: name, Args: args, Stdout: p.Stdout})
}

func (p *Previewer) text(ctx context.Context, file string) error {
	out, err := p.Runner.Output(ctx, shell.Cmd{Name: "bat", Args: []string{"--color=always", "-pp", "--", file}})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Stdout, limitLine(string(out), p.LineLimit))
	return err
}

// limitLine trims trailing whitespace and cuts a single line to limit runes.
func limitLine(s string, limit int) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if limit <= 0 || strings.Contains(s, "\n") {
		return s
	}
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}

func (p *Previewer) classify(ctx context.Context, file string) error {
	// Run file before printing so the header and output stay together.
	out, err := p.Runner.Output(ctx, shell.Cmd{Name: "file", Args: []string{"-Lb", file}})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.Stdout, "%s\n%s", classificationHeader, out)
	return err
}
