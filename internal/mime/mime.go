// Package mime detects a file's MIME type with the system tools.
//
// `xdg-mime query filetype` (the shared MIME database) is preferred over
// `file --mime-type`; neither is perfect. A few extensions are known to be
// misclassified by the database and are sent to `file` first.
package mime

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lfkit/lfkit/internal/shell"
)

// ErrMalformed marks output that is not a "media/subtype" pair.
var ErrMalformed = errors.New("malformed MIME type")

// Type is a media type split into its two halves.
type Type struct {
	Media   string
	Subtype string
}

func (t Type) String() string {
	return t.Media + "/" + t.Subtype
}

// Parse splits "media/subtype". Anything without exactly one slash-separated
// pair of non-empty halves is an error.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	media, sub, ok := strings.Cut(s, "/")
	if !ok || media == "" || sub == "" || strings.ContainsAny(s, " \t\n") {
		return Type{}, fmt.Errorf("%w %q", ErrMalformed, s)
	}
	return Type{Media: media, Subtype: sub}, nil
}

// Common types the helpers branch on.
var (
	Executable = Type{"application", "x-executable"}
	PlainText  = Type{"text", "plain"}
	PDF        = Type{"application", "pdf"}
	EPUB       = Type{"application", "epub+zip"}
)

// Detector resolves MIME types through a shell.Runner.
type Detector struct {
	Runner shell.Runner
	// FileCmdExtensions are routed to `file` before the MIME database.
	FileCmdExtensions []string
}

// Detect returns the MIME type of path.
func (d *Detector) Detect(ctx context.Context, path string) (Type, error) {
	if d.preferFileCmd(path) {
		t, err := d.fromFileCmd(ctx, path)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrMalformed) {
			return Type{}, err
		}
		return d.fromDatabase(ctx, path)
	}

	t, err := d.fromDatabase(ctx, path)
	if err == nil {
		return t, nil
	}
	if ft, ferr := d.fromFileCmd(ctx, path); ferr == nil {
		return ft, nil
	}
	return Type{}, err
}

func (d *Detector) preferFileCmd(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range d.FileCmdExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (d *Detector) fromFileCmd(ctx context.Context, path string) (Type, error) {
	args := []string{"-Lb", "--mime-type", "--", path}
	out, err := d.Runner.Output(ctx, shell.Cmd{Name: "file", Args: args})
	if err != nil {
		return Type{}, err
	}
	raw := strings.TrimRight(string(out), "\n\r ")
	t, err := Parse(raw)
	if err != nil {
		return Type{}, fmt.Errorf("%w: file %s returns %q", ErrMalformed, strings.Join(args, " "), raw)
	}
	return t, nil
}

func (d *Detector) fromDatabase(ctx context.Context, path string) (Type, error) {
	out, err := d.Runner.Output(ctx, shell.Cmd{Name: "xdg-mime", Args: []string{"query", "filetype", path}})
	if err != nil {
		return Type{}, err
	}
	t, err := Parse(string(out))
	if err != nil {
		return Type{}, fmt.Errorf("xdg-mime: %w", err)
	}
	return t, nil
}
