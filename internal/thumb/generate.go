package thumb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/shell"
)

// ErrUnsupported is returned for media types no generator handles.
var ErrUnsupported = errors.New("thumbnails are only generated for videos, audio, pdfs and epubs")

// Supported reports whether a thumbnail can be attempted for mt.
func Supported(mt mime.Type) bool {
	switch {
	case mt.Media == "video", mt.Media == "audio", mt == mime.PDF, mt == mime.EPUB:
		return true
	}
	return false
}

// generate writes a thumbnail of media to out.
func generate(ctx context.Context, r shell.Runner, timeout time.Duration, media string, mt mime.Type, out string) error {
	run := func(name string, args ...string) error {
		return r.Run(ctx, shell.Cmd{Name: name, Args: args, Timeout: timeout})
	}

	var err error
	switch {
	case mt.Media == "video":
		err = run("ffmpegthumbnailer", "-i", media, "-o", out, "-s", "0", "-t", "25%")
	case mt.Media == "audio":
		err = audioThumbnail(media, out, run)
	case mt == mime.PDF:
		// pdftoppm appends the extension itself.
		err = run("pdftoppm", "-singlefile", "-jpeg", media, strings.TrimSuffix(out, imageExt))
	case mt == mime.EPUB:
		err = run("ebook-meta", media, "--get-cover="+out)
	default:
		return fmt.Errorf("%s: %w", mt, ErrUnsupported)
	}
	if err != nil {
		return err
	}

	// ebook-meta exits 0 for books without a cover.
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("no thumbnail produced for %s", media)
	}
	return nil
}

func audioThumbnail(media, out string, run func(string, ...string) error) error {
	pic, err := AudioCover(media)
	if err == nil {
		// A PNG cover keeps the .jpg name; kitty sniffs the content.
		return os.WriteFile(out, pic.Data, 0600)
	}
	return run("ffmpeg", "-i", media, "-an", "-vcodec", "copy", out)
}
