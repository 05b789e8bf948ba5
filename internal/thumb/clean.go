package thumb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// staleWorkAge is how long a generation work dir may linger before Clean
// treats it as left over from a crashed run.
const staleWorkAge = time.Hour

// CleanStats counts what a Clean pass removed.
type CleanStats struct {
	Expired      int // images older than the age limit
	MissingMedia int // entries whose media file is gone
	MissingImage int // entries whose image is gone
	Orphaned     int // images no entry points at
	WorkDirs     int // abandoned generation dirs
}

// Total is the number of removals of any kind.
func (s CleanStats) Total() int {
	return s.Expired + s.MissingMedia + s.MissingImage + s.Orphaned + s.WorkDirs
}

// Clean evicts old and dangling cache entries. A cache without an image
// dir or index is left alone. The index is rewritten only if it changed.
func (c *Cache) Clean(now time.Time) (CleanStats, error) {
	var stats CleanStats
	if !isDir(c.images.dir) || !isFile(c.indexPath()) {
		return stats, nil
	}

	unlock, err := c.lock()
	if err != nil {
		return stats, err
	}
	defer unlock()

	ix, err := loadIndex(c.indexPath())
	if err != nil {
		return stats, fmt.Errorf("load index: %w", err)
	}
	before := ix.Len() + len(ix.Cache)

	for _, key := range c.images.keys() {
		info, err := c.images.stat(key)
		if err != nil || withinMonths(info.ModTime(), now, c.opts.MaxAgeMonths) {
			continue
		}
		if err := c.images.erase(key); err != nil {
			return stats, fmt.Errorf("remove %s: %w", key, err)
		}
		ix.RemoveImage(key)
		stats.Expired++
	}

	for media, image := range ix.Media {
		if isFile(media) {
			continue
		}
		ix.RemoveMedia(media)
		if err := c.images.erase(image); err != nil {
			return stats, fmt.Errorf("remove %s: %w", image, err)
		}
		stats.MissingMedia++
	}

	for image := range ix.Cache {
		if !c.images.has(image) {
			ix.RemoveImage(image)
			stats.MissingImage++
		}
	}
	for media, image := range ix.Media {
		if _, ok := ix.Cache[image]; !ok || !c.images.has(image) {
			delete(ix.Media, media)
			stats.MissingImage++
		}
	}

	for _, key := range c.images.keys() {
		if _, ok := ix.Cache[key]; ok {
			continue
		}
		if err := c.images.erase(key); err != nil {
			return stats, fmt.Errorf("remove %s: %w", key, err)
		}
		stats.Orphaned++
	}

	stats.WorkDirs = c.cleanWorkDirs(now)

	if ix.Len()+len(ix.Cache) != before {
		if err := ix.save(c.indexPath()); err != nil {
			return stats, fmt.Errorf("save index: %w", err)
		}
	}
	c.logger.Info("thumbnail cache cleaned",
		zap.Int("expired", stats.Expired),
		zap.Int("missing_media", stats.MissingMedia),
		zap.Int("missing_image", stats.MissingImage),
		zap.Int("orphaned", stats.Orphaned),
		zap.Int("work_dirs", stats.WorkDirs),
		zap.Int("remaining", ix.Len()))
	return stats, nil
}

func (c *Cache) cleanWorkDirs(now time.Time) int {
	dir := filepath.Join(c.root, tmpDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < staleWorkAge {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			c.logger.Warn("remove work dir", zap.String("dir", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// withinMonths reports whether old is less than months calendar months
// before now. At exactly months apart, old still counts when now has not
// passed it in day of month and time of day.
func withinMonths(old, now time.Time, months int) bool {
	old = old.In(now.Location())
	diff := (now.Year()-old.Year())*12 + int(now.Month()) - int(old.Month())
	switch {
	case diff < months:
		return true
	case diff > months:
		return false
	}
	return !clockAfter(now, old)
}

// clockAfter compares day of month down to the nanosecond.
func clockAfter(a, b time.Time) bool {
	av := [...]int{a.Day(), a.Hour(), a.Minute(), a.Second(), a.Nanosecond()}
	bv := [...]int{b.Day(), b.Hour(), b.Minute(), b.Second(), b.Nanosecond()}
	for i := range av {
		if av[i] != bv[i] {
			return av[i] > bv[i]
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
