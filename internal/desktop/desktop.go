// Package desktop locates freedesktop .desktop entries and turns their
// Exec line into an argv.
package desktop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/mimeapps"
)

// ErrNotFound is returned when no directory holds the requested entry.
var ErrNotFound = errors.New("no .desktop file found")

const sectionEntry = "Desktop Entry"

// Entry is a parsed desktop entry.
type Entry struct {
	Path string
	Name string
	Exec string
}

// SearchPath lists the application directories in lookup order.
func SearchPath(d dirs.Dirs) []string {
	return []string{
		filepath.Join(d.DataHome, "applications"),
		"/usr/local/share/applications",
		"/usr/share/applications",
	}
}

// Find loads the first entry called name (with its .desktop suffix) found
// along SearchPath.
func Find(d dirs.Dirs, name string) (*Entry, error) {
	for _, dir := range SearchPath(d) {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Load(path)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Load parses a desktop file. Values are taken raw; '%' is not
// interpolated.
func Load(path string) (*Entry, error) {
	f, err := mimeapps.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	sec, err := f.GetSection(sectionEntry)
	if err != nil {
		return nil, fmt.Errorf("%s: missing [%s]", path, sectionEntry)
	}
	return &Entry{
		Path: path,
		Name: sec.Key("Name").String(),
		Exec: sec.Key("Exec").String(),
	}, nil
}

// Command returns the Exec line split into argv, with field codes such as
// %f or %U and a " -- " separator removed so the file can be appended.
func (e *Entry) Command() ([]string, error) {
	if e.Exec == "" {
		return nil, fmt.Errorf("%s: empty Exec", e.Path)
	}
	argv, err := shlex.Split(StripFieldCodes(e.Exec))
	if err != nil {
		return nil, fmt.Errorf("%s: split Exec: %w", e.Path, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%s: empty Exec", e.Path)
	}
	return argv, nil
}

// StripFieldCodes drops every " %x" field code and " --" end-of-options
// marker from an Exec value.
func StripFieldCodes(exec string) string {
	var b strings.Builder
	for i := 0; i < len(exec); {
		if strings.HasPrefix(exec[i:], " %") || strings.HasPrefix(exec[i:], " -- ") {
			i += 3
			continue
		}
		b.WriteByte(exec[i])
		i++
	}
	return b.String()
}
