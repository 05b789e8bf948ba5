// Package thumb caches preview images of media files.
//
// Images live under <root>/img, named after a fingerprint of the media file
// so an edited file gets a fresh image. <root>/index.json maps the media
// path to its current image, which lets a cleanup pass drop images of files
// that were deleted or replaced.
package thumb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/shell"
)

const (
	imageDir  = "img"
	tmpDir    = "tmp"
	indexFile = "index.json"
	lockName  = "index.lock"
	imageExt  = ".jpg"

	defaultChunkSize = 64 << 10
	defaultTimeout   = 60 * time.Second
)

// Options tune a Cache. Zero values pick the defaults.
type Options struct {
	ChunkSize    int64
	HashEntire   bool
	MaxAgeMonths int
	Timeout      time.Duration
}

// Cache is a thumbnail cache rooted at a directory.
type Cache struct {
	root   string
	opts   Options
	runner shell.Runner
	logger *zap.Logger
	images *store
}

// Open prepares root (mode 0700) and returns a cache over it.
func Open(root string, runner shell.Runner, opts Options, logger *zap.Logger) (*Cache, error) {
	c := New(root, runner, opts, logger)
	for _, dir := range []string{root, c.images.dir, filepath.Join(root, tmpDir)} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return c, nil
}

// New returns a cache over root without touching the filesystem.
func New(root string, runner shell.Runner, opts Options, logger *zap.Logger) *Cache {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.MaxAgeMonths < 1 {
		opts.MaxAgeMonths = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		root:   root,
		opts:   opts,
		runner: runner,
		logger: logger,
		images: newStore(filepath.Join(root, imageDir)),
	}
}

// Root is the cache directory.
func (c *Cache) Root() string { return c.root }

func (c *Cache) indexPath() string { return filepath.Join(c.root, indexFile) }

// Thumbnail returns the path of an image for media, generating it on a
// miss. The media path is resolved through symlinks and must exist.
//
// Generation runs without the index lock. Moving the image into the store
// and recording it happen under one lock hold, so a concurrent Clean never
// sees a stored image that no entry points at.
func (c *Cache) Thumbnail(ctx context.Context, media string, mt mime.Type) (string, error) {
	resolved, err := realPath(media)
	if err != nil {
		return "", err
	}
	if !Supported(mt) {
		return "", fmt.Errorf("%s: %w", mt, ErrUnsupported)
	}

	id, err := FileID(resolved, c.opts.ChunkSize, c.opts.HashEntire)
	if err != nil {
		return "", err
	}
	image := ImageName(id)

	unlock, err := c.lock()
	if err != nil {
		return "", err
	}
	if c.images.has(image) {
		defer unlock()
		c.logger.Debug("thumbnail hit", zap.String("media", resolved), zap.String("image", image))
		if err := c.recordLocked(resolved, image); err != nil {
			return "", err
		}
		return c.images.path(image), nil
	}
	unlock()

	work, err := os.MkdirTemp(filepath.Join(c.root, tmpDir), id+"-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(work)

	out, err := c.create(ctx, work, resolved, mt, image)
	if err != nil {
		return "", err
	}

	unlock, err = c.lock()
	if err != nil {
		return "", err
	}
	defer unlock()
	if err := c.images.importFile(out, image); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	if err := c.recordLocked(resolved, image); err != nil {
		return "", err
	}
	return c.images.path(image), nil
}

// create generates into the private work dir, so a reader never sees a
// half-written image.
func (c *Cache) create(ctx context.Context, work, media string, mt mime.Type, image string) (string, error) {
	out := filepath.Join(work, image)
	start := time.Now()
	if err := generate(ctx, c.runner, c.opts.Timeout, media, mt, out); err != nil {
		return "", fmt.Errorf("generate thumbnail for %s: %w", media, err)
	}
	c.logger.Info("thumbnail generated",
		zap.String("media", media),
		zap.String("image", image),
		zap.Stringer("mime", mt),
		zap.Duration("took", time.Since(start)))
	return out, nil
}

func (c *Cache) lock() (func(), error) {
	return lockFile(filepath.Join(c.root, lockName))
}

// recordLocked points media at image. The caller holds the index lock.
func (c *Cache) recordLocked(media, image string) error {
	ix, err := loadIndex(c.indexPath())
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	stale, changed := ix.Set(media, image)
	if !changed {
		return nil
	}
	if stale != "" {
		if err := c.images.erase(stale); err != nil {
			c.logger.Warn("remove stale thumbnail", zap.String("image", stale), zap.Error(err))
		}
	}
	if err := ix.save(c.indexPath()); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Lookup returns the recorded image for media without generating anything.
func (c *Cache) Lookup(media string) (string, bool) {
	resolved, err := realPath(media)
	if err != nil {
		return "", false
	}
	ix, err := loadIndex(c.indexPath())
	if err != nil {
		return "", false
	}
	image, ok := ix.Image(resolved)
	if !ok || !c.images.has(image) {
		return "", false
	}
	return c.images.path(image), true
}

func realPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return resolved, nil
}
