package downloader

import (
	"context"
	"time"

	"coverfetch/model"
)

// Downloader defines the contract for fetching one song's thumbnail
type Downloader interface {
	// Download fetches the primary image of song and writes it to disk.
	// A song without images succeeds immediately with Result.Skipped set.
	Download(ctx context.Context, song model.Song) (*Result, error)
}

// Result describes a finished download
type Result struct {
	Song     model.Song    `json:"song"`
	FilePath string        `json:"file_path,omitempty"`
	Bytes    int64         `json:"bytes"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Skipped  bool          `json:"skipped"`  // no images, nothing fetched
	Existing bool          `json:"existing"` // target already on disk
}

// Written reports whether this download produced a file on disk.
func (r *Result) Written() bool {
	return r != nil && !r.Skipped && !r.Existing && r.FilePath != ""
}
