package mimeapps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/shell"
	"github.com/lfkit/lfkit/internal/shell/shelltest"
	"github.com/lfkit/lfkit/internal/tui"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testDirs(t *testing.T) dirs.Dirs {
	root := t.TempDir()
	d := dirs.ForHome(filepath.Join(root, "home"))
	d.ConfigDirs = []string{filepath.Join(root, "etc", "xdg")}
	d.DataDirs = []string{filepath.Join(root, "usr", "share")}
	return d
}

func TestListOrder(t *testing.T) {
	d := dirs.Dirs{
		ConfigHome: "/h/.config",
		ConfigDirs: []string{"/etc/xdg"},
		DataDirs:   []string{"/usr/share"},
	}
	r := &Resolver{Dirs: d, Desktops: []string{"sway", "wlroots"}}

	assert.Equal(t, []string{
		"/h/.config/sway-mimeapps.list",
		"/h/.config/wlroots-mimeapps.list",
		"/h/.config/mimeapps.list",
	}, r.UserLists())
	assert.Equal(t, []string{
		"/etc/xdg/sway-mimeapps.list",
		"/etc/xdg/wlroots-mimeapps.list",
		"/etc/xdg/mimeapps.list",
		"/usr/share/applications/sway-mimeapps.list",
		"/usr/share/applications/wlroots-mimeapps.list",
		"/usr/share/applications/mimeapps.list",
	}, r.SystemLists())
}

func TestDefaultFromUserList(t *testing.T) {
	d := testDirs(t)
	write(t, filepath.Join(d.ConfigHome, "mimeapps.list"), `
[Added Associations]
video/mp4=vlc.desktop;

[Default Applications]
video/mp4=mpv.desktop;celluloid.desktop;
`)
	r := &Resolver{Dirs: d}

	got, err := r.Default(context.Background(), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "mpv.desktop", got)

	all, err := r.Candidates(context.Background(), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{"vlc.desktop"}, all, "open-with lists added associations")
}

func TestDesktopSpecificListWins(t *testing.T) {
	d := testDirs(t)
	write(t, filepath.Join(d.ConfigHome, "mimeapps.list"), "[Default Applications]\napplication/pdf=evince.desktop\n")
	write(t, filepath.Join(d.ConfigHome, "sway-mimeapps.list"), "[Default Applications]\napplication/pdf=zathura.desktop;\n")
	r := &Resolver{Dirs: d, Desktops: []string{"sway"}}

	got, err := r.Default(context.Background(), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "zathura.desktop", got)
}

func TestKeysAreCaseSensitive(t *testing.T) {
	d := testDirs(t)
	write(t, filepath.Join(d.ConfigHome, "mimeapps.list"), "[Default Applications]\nvideo/MP2T=mpv.desktop;\n")
	r := &Resolver{Dirs: d, Prompt: func(string) (string, error) { return "", tui.ErrCancelled }}

	_, err := r.Default(context.Background(), "video/mp2t")
	assert.ErrorIs(t, err, tui.ErrCancelled)
}

func TestSystemFallbacks(t *testing.T) {
	d := testDirs(t)
	write(t, filepath.Join(d.DataDirs[0], "applications", "mimeinfo.cache"), "[MIME Cache]\nimage/png=feh.desktop;gimp.desktop;\n")
	write(t, filepath.Join(d.ConfigDirs[0], "mimeapps.list"), "[Default Applications]\naudio/flac=mpv.desktop\n")
	r := &Resolver{Dirs: d}

	got, err := r.Default(context.Background(), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "feh.desktop", got)

	got, err = r.Default(context.Background(), "audio/flac")
	require.NoError(t, err)
	assert.Equal(t, "mpv.desktop", got)

	all, err := r.Candidates(context.Background(), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{"feh.desktop", "gimp.desktop"}, all)
}

func TestTextFallsBackToEditor(t *testing.T) {
	r := &Resolver{Dirs: testDirs(t)}
	for _, mt := range []string{"text/x-go", "inode/x-empty", "application/x-empty"} {
		got, err := r.Default(context.Background(), mt)
		require.NoError(t, err)
		assert.Equal(t, TextEditor, got, mt)
	}
}

func TestPromptFallback(t *testing.T) {
	var asked string
	r := &Resolver{Dirs: testDirs(t), Prompt: func(q string) (string, error) {
		asked = q
		return "gimp", nil
	}}

	got, err := r.Default(context.Background(), "image/x-xcf")
	require.NoError(t, err)
	assert.Equal(t, "gimp.desktop", got)
	assert.Contains(t, asked, "No program found")

	r.Prompt = func(string) (string, error) { return "krita.desktop", nil }
	all, err := r.Candidates(context.Background(), "image/x-krita")
	require.NoError(t, err)
	assert.Equal(t, []string{"krita.desktop"}, all)
}

func TestNoPrompt(t *testing.T) {
	r := &Resolver{Dirs: testDirs(t)}
	_, err := r.Default(context.Background(), "application/x-unknown")
	require.Error(t, err)
}

const traderOutput = `---- Offer 0 ----
DesktopEntryName : 'org.kde.okular'
Name : 'Okular'
---- Offer 1 ----
DesktopEntryName : 'org.kde.gwenview'
`

func TestParseTraderOutput(t *testing.T) {
	assert.Equal(t, []string{"org.kde.okular.desktop", "org.kde.gwenview.desktop"}, ParseTraderOutput(traderOutput))
	assert.Nil(t, ParseTraderOutput("got 0 offers.\n"))
	assert.Nil(t, ParseTraderOutput(""))
}

func TestKDEUsesTrader(t *testing.T) {
	d := testDirs(t)
	write(t, filepath.Join(d.ConfigHome, "mimeapps.list"), "[Default Applications]\napplication/pdf=evince.desktop\n")
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		return shelltest.Result{Stdout: traderOutput}
	}}
	r := &Resolver{Dirs: d, Desktops: []string{"kde"}, Runner: fake}

	got, err := r.Default(context.Background(), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "org.kde.okular.desktop", got)
	assert.Equal(t, []string{"ktraderclient5", "--mimetype", "application/pdf"}, shelltest.Argv(fake.Calls()[0]))

	// no offers: fall through to the lists
	fake.Handle = func(c shell.Cmd) shelltest.Result { return shelltest.Result{Stdout: "got 0 offers.\n"} }
	got, err = r.Default(context.Background(), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "evince.desktop", got)

	fake.Handle = func(c shell.Cmd) shelltest.Result { return shelltest.Result{Err: errors.New("missing")} }
	_, err = r.Default(context.Background(), "application/pdf")
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.desktop", "b.desktop"}, SplitList("a.desktop;b.desktop;"))
	assert.Equal(t, []string{"a.desktop"}, SplitList("a.desktop"))
	assert.Nil(t, SplitList(";"))
}
