package dirs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDesktops(t *testing.T) {
	assert.Equal(t, []string{"kde"}, ParseDesktops("KDE"))
	assert.Equal(t, []string{"ubuntu", "gnome"}, ParseDesktops("ubuntu:GNOME"))
	assert.Nil(t, ParseDesktops(""))
	assert.Equal(t, []string{"sway"}, ParseDesktops(":sway:"))
}

func TestCurrentFollowsEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	d := Current()
	assert.Equal(t, filepath.Join(home, "cfg"), d.ConfigHome)
	assert.Equal(t, filepath.Join(home, "cache"), d.CacheHome)
}

func TestTempDir(t *testing.T) {
	t.Setenv("TMPDIR", "")
	assert.Equal(t, "/tmp", TempDir())
	t.Setenv("TMPDIR", "/var/tmp")
	assert.Equal(t, "/var/tmp", TempDir())
}
