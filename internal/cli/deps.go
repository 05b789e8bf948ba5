package cli

import (
	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/thumb"
)

// Detector returns a MIME detector using the configured extensions.
func (a *App) Detector() *mime.Detector {
	return &mime.Detector{Runner: a.Runner, FileCmdExtensions: a.Config.Mime.FileCmdExtensions}
}

// ThumbOptions converts the thumb config section.
func (a *App) ThumbOptions() thumb.Options {
	return thumb.Options{
		ChunkSize:    int64(a.Config.Thumb.ChunkSize.Bytes()),
		HashEntire:   a.Config.Thumb.HashEntire,
		MaxAgeMonths: a.Config.Thumb.MaxAgeMonths,
		Timeout:      a.Config.GetGenerateTimeout(),
	}
}

// ThumbCache opens the thumbnail cache, creating its directories.
func (a *App) ThumbCache() (*thumb.Cache, error) {
	return thumb.Open(a.Config.ThumbCacheDir(a.Dirs), a.Runner, a.ThumbOptions(), a.Logger.Named("thumb"))
}

// ExistingThumbCache returns the thumbnail cache without creating it.
func (a *App) ExistingThumbCache() *thumb.Cache {
	return thumb.New(a.Config.ThumbCacheDir(a.Dirs), a.Runner, a.ThumbOptions(), a.Logger.Named("thumb"))
}
