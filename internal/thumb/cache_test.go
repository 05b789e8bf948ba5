package thumb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/shell"
	"github.com/lfkit/lfkit/internal/shell/shelltest"
)

var video = mime.Type{Media: "video", Subtype: "mp4"}

// thumbnailer pretends to be the external tools: it writes a fake JPEG
// wherever the command was told to put its output.
func thumbnailer(c shell.Cmd) shelltest.Result {
	var out string
	switch c.Name {
	case "ffmpegthumbnailer":
		for i, a := range c.Args {
			if a == "-o" {
				out = c.Args[i+1]
			}
		}
	case "ffmpeg":
		out = c.Args[len(c.Args)-1]
	case "pdftoppm":
		out = c.Args[len(c.Args)-1] + ".jpg"
	case "ebook-meta":
		out = strings.TrimPrefix(c.Args[1], "--get-cover=")
	}
	if out == "" {
		return shelltest.Result{Err: fmt.Errorf("unexpected command %s", c)}
	}
	if err := os.WriteFile(out, []byte("\xff\xd8\xff jpeg"), 0600); err != nil {
		return shelltest.Result{Err: err}
	}
	return shelltest.Result{}
}

func newTestCache(t *testing.T, handle func(shell.Cmd) shelltest.Result) (*Cache, *shelltest.Fake) {
	t.Helper()
	fake := &shelltest.Fake{Handle: handle}
	c, err := Open(filepath.Join(t.TempDir(), "lf_thumb"), fake, Options{ChunkSize: 16}, nil)
	require.NoError(t, err)
	return c, fake
}

func media(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpenCreatesPrivateDirs(t *testing.T) {
	c, _ := newTestCache(t, thumbnailer)
	for _, dir := range []string{c.Root(), filepath.Join(c.Root(), "img"), filepath.Join(c.Root(), "tmp")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm(), dir)
	}
}

func TestThumbnailGeneratesOnce(t *testing.T) {
	c, fake := newTestCache(t, thumbnailer)
	m := media(t, "clip.mp4", "some video bytes")

	path, err := c.Thumbnail(context.Background(), m, video)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(c.Root(), "img"), filepath.Dir(path))
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, []string{"-s", "0", "-t", "25%"}, fake.Calls()[0].Args[4:])
	assert.Positive(t, fake.Calls()[0].Timeout)

	again, err := c.Thumbnail(context.Background(), m, video)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Len(t, fake.Calls(), 1, "second request is a hit")

	ix, err := loadIndex(c.indexPath())
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(m)
	assert.Equal(t, filepath.Base(path), ix.Media[resolved])
	assert.Equal(t, resolved, ix.Cache[filepath.Base(path)])

	found, ok := c.Lookup(m)
	assert.True(t, ok)
	assert.Equal(t, path, found)

	entries, err := os.ReadDir(filepath.Join(c.Root(), "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries, "work dirs are removed")
}

func TestThumbnailReplacesStaleImage(t *testing.T) {
	c, fake := newTestCache(t, thumbnailer)
	m := media(t, "clip.mp4", "version one")

	first, err := c.Thumbnail(context.Background(), m, video)
	require.NoError(t, err)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(m, []byte("version two!"), 0644))
	require.NoError(t, os.Chtimes(m, later, later))

	second, err := c.Thumbnail(context.Background(), m, video)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)
	assert.Len(t, fake.Calls(), 2)

	ix, err := loadIndex(c.indexPath())
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	assert.Len(t, ix.Cache, 1)
}

func TestThumbnailFollowsSymlinks(t *testing.T) {
	c, _ := newTestCache(t, thumbnailer)
	m := media(t, "clip.mp4", "video")
	link := filepath.Join(t.TempDir(), "link.mp4")
	require.NoError(t, os.Symlink(m, link))

	a, err := c.Thumbnail(context.Background(), link, video)
	require.NoError(t, err)
	b, err := c.Thumbnail(context.Background(), m, video)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	ix, err := loadIndex(c.indexPath())
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
}

func TestThumbnailGenerators(t *testing.T) {
	tests := []struct {
		name string
		mt   mime.Type
		want func(out string) []string
	}{
		{
			name: "pdf",
			mt:   mime.PDF,
			want: func(out string) []string {
				return []string{"pdftoppm", "-singlefile", "-jpeg", "M", strings.TrimSuffix(out, ".jpg")}
			},
		},
		{
			name: "epub",
			mt:   mime.EPUB,
			want: func(out string) []string { return []string{"ebook-meta", "M", "--get-cover=" + out} },
		},
		{
			name: "audio without cover",
			mt:   mime.Type{Media: "audio", Subtype: "mpeg"},
			want: func(out string) []string { return []string{"ffmpeg", "-i", "M", "-an", "-vcodec", "copy", out} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestCache(t, thumbnailer)
			m := media(t, "file", "not a tagged file, just bytes")
			resolved, err := filepath.EvalSymlinks(m)
			require.NoError(t, err)

			_, err = c.Thumbnail(context.Background(), m, tt.mt)
			require.NoError(t, err)
			require.Len(t, fake.Calls(), 1)

			got := shelltest.Argv(fake.Calls()[0])
			var out string
			for _, a := range got {
				if strings.Contains(a, c.Root()) {
					out = strings.TrimPrefix(a, "--get-cover=")
				}
			}
			if tt.mt == mime.PDF {
				out += ".jpg"
			}
			require.NotEmpty(t, out)
			want := tt.want(out)
			for i, a := range want {
				if a == "M" {
					want[i] = resolved
				}
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestThumbnailUnsupported(t *testing.T) {
	c, fake := newTestCache(t, thumbnailer)
	m := media(t, "notes.md", "# hi")

	_, err := c.Thumbnail(context.Background(), m, mime.Type{Media: "text", Subtype: "markdown"})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, fake.Calls())
	assert.NoFileExists(t, c.indexPath())
}

func TestThumbnailMissingMedia(t *testing.T) {
	c, _ := newTestCache(t, thumbnailer)
	_, err := c.Thumbnail(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), video)
	assert.True(t, errors.Is(err, os.ErrNotExist), err)
}

func TestThumbnailGeneratorFailures(t *testing.T) {
	t.Run("tool fails", func(t *testing.T) {
		c, _ := newTestCache(t, func(c shell.Cmd) shelltest.Result {
			return shelltest.Result{Err: &shell.ExitError{Name: c.Name, Code: 1, Stderr: "broken"}}
		})
		_, err := c.Thumbnail(context.Background(), media(t, "a.mp4", "x"), video)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
		assert.Empty(t, c.images.keys())
	})

	t.Run("no output", func(t *testing.T) {
		c, _ := newTestCache(t, func(shell.Cmd) shelltest.Result { return shelltest.Result{} })
		_, err := c.Thumbnail(context.Background(), media(t, "a.epub", "x"), mime.EPUB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no thumbnail produced")
	})
}

func TestThumbnailConcurrent(t *testing.T) {
	c, _ := newTestCache(t, thumbnailer)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		m := media(t, fmt.Sprintf("v%d.mp4", i), fmt.Sprintf("video %d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Thumbnail(context.Background(), m, video)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ix, err := loadIndex(c.indexPath())
	require.NoError(t, err)
	assert.Equal(t, 8, ix.Len(), "no index update is lost")
}

func TestCleanDuringGenerationKeepsNewImage(t *testing.T) {
	fake := &shelltest.Fake{Handle: thumbnailer}
	root := filepath.Join(t.TempDir(), "lf_thumb")

	// Another process cleaning the cache right after generation finishes.
	var cleanErrs []error
	core, _ := observer.New(zap.InfoLevel)
	logger := zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Message == "thumbnail generated" {
			_, err := New(root, fake, Options{}, nil).Clean(time.Now())
			cleanErrs = append(cleanErrs, err)
		}
		return nil
	}))
	c, err := Open(root, fake, Options{ChunkSize: 16}, logger)
	require.NoError(t, err)

	first, err := c.Thumbnail(context.Background(), media(t, "a.mp4", "first video"), video)
	require.NoError(t, err)
	second, err := c.Thumbnail(context.Background(), media(t, "b.mp4", "second video"), video)
	require.NoError(t, err)

	require.Len(t, cleanErrs, 2)
	for _, err := range cleanErrs {
		assert.NoError(t, err)
	}
	assert.FileExists(t, first)
	assert.FileExists(t, second)

	ix, err := loadIndex(c.indexPath())
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())
	for image := range ix.Cache {
		assert.True(t, c.images.has(image), image)
	}
}

func TestLookupWithoutEntry(t *testing.T) {
	c, fake := newTestCache(t, thumbnailer)
	_, ok := c.Lookup(media(t, "new.mp4", "never thumbnailed"))
	assert.False(t, ok)
	_, ok = c.Lookup(filepath.Join(t.TempDir(), "gone.mp4"))
	assert.False(t, ok)
	assert.Empty(t, fake.Calls())
}
