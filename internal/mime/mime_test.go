package mime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfkit/lfkit/internal/shell"
	"github.com/lfkit/lfkit/internal/shell/shelltest"
)

var fileCmdExts = []string{".ts", ".bak", ".txt", ".TXT"}

func TestParse(t *testing.T) {
	got, err := Parse("video/mp4\n")
	require.NoError(t, err)
	assert.Equal(t, Type{"video", "mp4"}, got)
	assert.Equal(t, "video/mp4", got.String())

	for _, bad := range []string{"", "video", "/mp4", "video/", "cannot open file"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrMalformed, bad)
	}
}

func TestDetectUsesDatabaseByDefault(t *testing.T) {
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		if c.Name == "xdg-mime" {
			return shelltest.Result{Stdout: "text/markdown\n"}
		}
		t.Fatalf("unexpected command %s", c)
		return shelltest.Result{}
	}}
	d := &Detector{Runner: fake, FileCmdExtensions: fileCmdExts}

	got, err := d.Detect(context.Background(), "/notes/readme.md")
	require.NoError(t, err)
	assert.Equal(t, Type{"text", "markdown"}, got)
	assert.Equal(t, []string{"xdg-mime", "query", "filetype", "/notes/readme.md"}, shelltest.Argv(fake.Calls()[0]))
}

func TestDetectPrefersFileForKnownExtensions(t *testing.T) {
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		if c.Name == "file" {
			return shelltest.Result{Stdout: "video/MP2T\n"}
		}
		return shelltest.Result{Stdout: "text/vnd.trolltech.linguist\n"}
	}}
	d := &Detector{Runner: fake, FileCmdExtensions: fileCmdExts}

	got, err := d.Detect(context.Background(), "/v/clip.ts")
	require.NoError(t, err)
	assert.Equal(t, Type{"video", "MP2T"}, got)
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, []string{"file", "-Lb", "--mime-type", "--", "/v/clip.ts"}, shelltest.Argv(fake.Calls()[0]))
}

func TestDetectFileFailureFallsBackToDatabase(t *testing.T) {
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		if c.Name == "file" {
			return shelltest.Result{Err: &shell.ExitError{Name: "file", Code: 1}}
		}
		return shelltest.Result{Stdout: "text/plain\n"}
	}}
	d := &Detector{Runner: fake, FileCmdExtensions: fileCmdExts}

	got, err := d.Detect(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, PlainText, got)
}

func TestDetectMalformedFileOutput(t *testing.T) {
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		return shelltest.Result{Stdout: "weird\n"}
	}}
	d := &Detector{Runner: fake, FileCmdExtensions: fileCmdExts}

	_, err := d.Detect(context.Background(), "x.bak")
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), `"weird"`)
}

func TestDetectDatabaseFailureFallsBackToFile(t *testing.T) {
	fake := &shelltest.Fake{Handle: func(c shell.Cmd) shelltest.Result {
		if c.Name == "xdg-mime" {
			return shelltest.Result{Err: &shell.ExitError{Name: "xdg-mime", Code: 2}}
		}
		return shelltest.Result{Stdout: "application/pdf\n"}
	}}
	d := &Detector{Runner: fake, FileCmdExtensions: fileCmdExts}

	got, err := d.Detect(context.Background(), "paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, PDF, got)
}
