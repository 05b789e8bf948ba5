// Package homeclean moves stray dot files out of $HOME into the trash.
package homeclean

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moby/sys/mountinfo"
	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/shell"
)

const (
	// DefaultMountInfo lists the mounts of the calling process.
	DefaultMountInfo = "/proc/self/mountinfo"

	// Home is opened up while cleaning and locked down again afterwards.
	cleaningMode = 0o710
	lockedMode   = 0o510
)

// Whitelist returns the dot entries that always stay: the XDG directories
// themselves, systemd-homed's .identity, and the lines of
// $XDG_CONFIG_HOME/clean/white-list.
func Whitelist(d dirs.Dirs) (map[string]bool, error) {
	keep := map[string]bool{
		filepath.Base(d.ConfigHome):             true,
		filepath.Base(d.CacheHome):              true,
		filepath.Base(filepath.Dir(d.DataHome)): true,
		".identity":                             true,
	}
	f, err := os.Open(filepath.Join(d.ConfigHome, "clean", "white-list"))
	if err != nil {
		if os.IsNotExist(err) {
			return keep, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			keep[name] = true
		}
	}
	return keep, sc.Err()
}

// Cleaner trashes unlisted dot entries in Home.
type Cleaner struct {
	Home      string
	Whitelist map[string]bool
	MountInfo string
	Runner    shell.Runner
	DryRun    bool
	Stdout    io.Writer
	Logger    *zap.Logger
}

// Candidates lists the entries Clean would trash, sorted.
func (c *Cleaner) Candidates() ([]string, error) {
	mounts, err := ReadMountPoints(c.mountInfo())
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.Home)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, ".") || c.Whitelist[name] {
			continue
		}
		path := filepath.Join(c.Home, name)
		info, err := os.Lstat(path)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if isBindMount(path, mounts) {
			continue
		}
		mounted, err := mountinfo.Mounted(path)
		if err != nil {
			c.Logger.Warn("skipping entry", zap.String("path", path), zap.Error(err))
			continue
		}
		if mounted {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

func (c *Cleaner) mountInfo() string {
	if c.MountInfo != "" {
		return c.MountInfo
	}
	return DefaultMountInfo
}

func isBindMount(path string, mounts map[string]bool) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	return mounts[resolved]
}

// Clean trashes every candidate and returns them. Home's mode is switched
// to 0710 while cleaning and to 0510 afterwards.
func (c *Cleaner) Clean(ctx context.Context) (trashed []string, err error) {
	candidates, err := c.Candidates()
	if err != nil {
		return nil, err
	}
	if c.DryRun {
		for _, path := range candidates {
			fmt.Fprintln(c.Stdout, path)
		}
		return candidates, nil
	}

	if err := ensureMode(c.Home, cleaningMode); err != nil {
		return nil, err
	}
	defer func() {
		if lockErr := ensureMode(c.Home, lockedMode); lockErr != nil && err == nil {
			err = lockErr
		}
	}()

	for _, path := range candidates {
		if err := c.Runner.Run(ctx, shell.Cmd{Name: "trash", Args: []string{path}}); err != nil {
			return trashed, err
		}
		c.Logger.Info("trashed", zap.String("path", path))
		trashed = append(trashed, path)
	}
	return trashed, nil
}

func ensureMode(path string, mode os.FileMode) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() == mode {
		return nil
	}
	return os.Chmod(path, mode)
}

// ReadMountPoints returns the mount points listed in a mountinfo file.
func ReadMountPoints(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read mounts: %w", err)
	}
	defer f.Close()

	infos, err := mountinfo.GetMountsFromReader(f, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	mounts := make(map[string]bool, len(infos))
	for _, m := range infos {
		mounts[m.Mountpoint] = true
	}
	return mounts, nil
}
