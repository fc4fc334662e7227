package pipeline

import (
	"sync"

	"coverfetch/downloader"
	"coverfetch/model"
)

// Dedup remembers which songs a run has already dispatched. One Dedup is
// shared across every pass of a run, so a song present in several playlists
// is fetched once. A nil *Dedup disables deduplication.
type Dedup struct {
	mu    sync.Mutex
	songs map[string]struct{}
	paths map[string]struct{}
}

// NewDedup creates an empty set
func NewDedup() *Dedup {
	return &Dedup{
		songs: make(map[string]struct{}),
		paths: make(map[string]struct{}),
	}
}

// Claim reports whether song is new to this run. Besides structural
// equality it also claims the song's target file name, so two songs that
// differ only in artists or images never write the same path twice. A song
// without images writes nothing and leaves the path unclaimed.
func (d *Dedup) Claim(song model.Song) bool {
	if d == nil {
		return true
	}

	key := song.Key()
	_, writes := song.PrimaryImage()
	path := downloader.TargetPath("", song)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.songs[key]; ok {
		return false
	}
	if _, ok := d.paths[path]; ok && writes {
		return false
	}
	d.songs[key] = struct{}{}
	if writes {
		d.paths[path] = struct{}{}
	}
	return true
}

// Len returns the number of claimed songs
func (d *Dedup) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.songs)
}
