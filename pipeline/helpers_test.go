package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"coverfetch/downloader"
	"coverfetch/model"
	"coverfetch/progress"
)

// fakeDownloader records every song it is asked for, fails the IDs in
// failIDs and reports the IDs in cancelIDs as cancelled.
type fakeDownloader struct {
	mu        sync.Mutex
	songs     []model.Song
	failIDs   map[string]bool
	cancelIDs map[string]bool
}

func (f *fakeDownloader) Download(ctx context.Context, song model.Song) (*downloader.Result, error) {
	f.mu.Lock()
	f.songs = append(f.songs, song)
	fail, cancelled := f.failIDs[song.ID], f.cancelIDs[song.ID]
	f.mu.Unlock()

	if cancelled {
		return nil, downloader.NewDownloadErrorWithCause(downloader.ErrorCancelled, "download cancelled", context.Canceled)
	}
	if fail {
		return nil, downloader.NewDownloadError(downloader.ErrorHTTPStatus, "unexpected status 500")
	}
	return &downloader.Result{Song: song, FilePath: song.ID + ".jpg", Bytes: 1, Attempts: 1}, nil
}

func (f *fakeDownloader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.songs)
}

// recordingCounter checks that the count never passes the total.
type recordingCounter struct {
	mu        sync.Mutex
	total     int
	count     int
	overshoot bool
	finished  []string
}

func (c *recordingCounter) SetTotal(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
}

func (c *recordingCounter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.count > c.total {
		c.overshoot = true
	}
}

func (c *recordingCounter) Finish(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = append(c.finished, message)
}

type recordingReporter struct {
	name     string
	fetch    *recordingCounter
	download *recordingCounter
	closed   bool
}

func (r *recordingReporter) Fetch() progress.Counter    { return r.fetch }
func (r *recordingReporter) Download() progress.Counter { return r.download }
func (r *recordingReporter) Close()                     { r.closed = true }

type recordingFactory struct {
	mu        sync.Mutex
	reporters []*recordingReporter
}

func (f *recordingFactory) New(listName string) progress.Reporter {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &recordingReporter{name: listName, fetch: &recordingCounter{}, download: &recordingCounter{}}
	f.reporters = append(f.reporters, r)
	return r
}

// songPages splits n songs into pages of limit, the last one reporting no
// next page.
func songPages(n, limit int) func(ctx context.Context, limit, offset int) (model.Page[model.Song], error) {
	return func(ctx context.Context, l, offset int) (model.Page[model.Song], error) {
		if l != limit {
			return model.Page[model.Song]{}, fmt.Errorf("unexpected limit %d", l)
		}
		var items []model.Song
		for i := offset; i < offset+l && i < n; i++ {
			items = append(items, model.Song{
				ID:     fmt.Sprintf("song%03d", i),
				Name:   fmt.Sprintf("Song %d", i),
				Images: []string{fmt.Sprintf("https://img.example/%d", i)},
			})
		}
		return model.Page[model.Song]{Items: items, Total: n, HasNext: offset+l < n}, nil
	}
}

func identity(s model.Song) (model.Song, error) { return s, nil }

var errBrokenItem = errors.New("broken item")
