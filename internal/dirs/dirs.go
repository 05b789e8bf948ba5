// Package dirs captures the XDG base directories the helpers read from.
package dirs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Dirs is a snapshot of the XDG base directories.
type Dirs struct {
	Home       string
	ConfigHome string
	DataHome   string
	CacheHome  string
	StateHome  string
	RuntimeDir string
	ConfigDirs []string
	DataDirs   []string
}

// Current reads the base directories from the environment.
func Current() Dirs {
	xdg.Reload()
	return Dirs{
		Home:       xdg.Home,
		ConfigHome: xdg.ConfigHome,
		DataHome:   xdg.DataHome,
		CacheHome:  xdg.CacheHome,
		StateHome:  xdg.StateHome,
		RuntimeDir: xdg.RuntimeDir,
		ConfigDirs: append([]string(nil), xdg.ConfigDirs...),
		DataDirs:   append([]string(nil), xdg.DataDirs...),
	}
}

// ForHome builds the XDG defaults rooted at home. Tests use it to
// get a fully isolated tree.
func ForHome(home string) Dirs {
	return Dirs{
		Home:       home,
		ConfigHome: filepath.Join(home, ".config"),
		DataHome:   filepath.Join(home, ".local", "share"),
		CacheHome:  filepath.Join(home, ".cache"),
		StateHome:  filepath.Join(home, ".local", "state"),
		RuntimeDir: filepath.Join(home, "run"),
		ConfigDirs: []string{"/etc/xdg"},
		DataDirs:   []string{"/usr/local/share", "/usr/share"},
	}
}

// CurrentDesktops returns XDG_CURRENT_DESKTOP lower-cased and split on ':'.
func CurrentDesktops() []string {
	return ParseDesktops(os.Getenv("XDG_CURRENT_DESKTOP"))
}

// ParseDesktops splits a XDG_CURRENT_DESKTOP value.
func ParseDesktops(value string) []string {
	var desktops []string
	for _, d := range strings.Split(value, ":") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			desktops = append(desktops, d)
		}
	}
	return desktops
}

// TempDir returns $TMPDIR or /tmp.
func TempDir() string {
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return dir
	}
	return "/tmp"
}
