package preview

import (
	"context"

	"github.com/lfkit/lfkit/internal/mime"
)

type handler func(ctx context.Context, p *Previewer, file string, mt mime.Type) error

func archive(ctx context.Context, p *Previewer, file string, mt mime.Type) error {
	args := []string{"--list"}
	if mt.Subtype == "zip" {
		args = append(args, "-F", "zip")
	}
	return p.stream(ctx, "atool", append(args, "--", file)...)
}

func command(name string, args ...string) handler {
	return func(ctx context.Context, p *Previewer, file string, _ mime.Type) error {
		return p.stream(ctx, name, append(append([]string(nil), args...), file)...)
	}
}

func textHandler(ctx context.Context, p *Previewer, file string, _ mime.Type) error {
	return p.text(ctx, file)
}

// handlers maps exact MIME types to their previewer. Types not listed fall
// back to bat for text/* and to `file` for everything else.
var handlers = map[string]handler{}

func register(h handler, types ...string) {
	for _, t := range types {
		handlers[t] = h
	}
}

func init() {
	register(archive,
		"application/x-compressed-tar",
		"application/x-tar",
		"application/x-archive",
		"application/x-bzip",
		"application/x-bzip-compressed-tar",
		"application/vnd.ms-cab-compressed",
		"application/gzip",
		"application/x-java-archive",
		"application/x-lzma",
		"application/x-lz4",
		"application/x-xz-compressed-tar",
		"application/x-xz",
		"application/x-xpinstall",
		"application/x-compress",
		"application/zip",
	)
	register(command("unrar", "lt", "-p-", "--"), "application/vnd.rar")
	register(command("7z", "l", "-p", "--"), "application/x-7z-compressed")
	register(command("odt2txt"),
		"application/vnd.oasis.opendocument.text",
		"application/vnd.oasis.opendocument.spreadsheet",
	)
	register(command("pandoc", "-s", "-t", "gfm", "--"),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	register(command("transmission-show", "--"), "application/x-bittorrent")
	register(command("w3m", "-dump"), "text/html", "application/xhtml+xml")
	register(textHandler,
		"application/xml",
		"application/json",
		"application/yaml",
		"application/toml",
		"application/x-shellscript",
		"application/javascript",
		"application/x-desktop",
	)
}
