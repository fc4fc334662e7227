package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BarReporter renders both counters as terminal progress bars.
type BarReporter struct {
	fetch    *barCounter
	download *barCounter
}

// NewBarReporter creates bars writing to w, labelled for listName.
func NewBarReporter(w io.Writer, listName string) *BarReporter {
	return &BarReporter{
		fetch:    &barCounter{w: w, description: fmt.Sprintf("Fetching %s...", listName)},
		download: &barCounter{w: w, description: "Downloading thumbnails..."},
	}
}

// BarFactory returns a Factory producing BarReporters on w.
func BarFactory(w io.Writer) Factory {
	return func(listName string) Reporter {
		return NewBarReporter(w, listName)
	}
}

// Fetch returns the fetch counter
func (r *BarReporter) Fetch() Counter { return r.fetch }

// Download returns the download counter
func (r *BarReporter) Download() Counter { return r.download }

// Close finishes any bar that was left open
func (r *BarReporter) Close() {
	r.fetch.close()
	r.download.close()
}

// barCounter creates its bar lazily so the first known total, not a
// placeholder, sizes it.
type barCounter struct {
	mu          sync.Mutex
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
	finished    bool
}

func (c *barCounter) ensure(max int) *progressbar.ProgressBar {
	if c.bar == nil {
		c.bar = progressbar.NewOptions(max,
			progressbar.OptionSetWriter(c.w),
			progressbar.OptionSetDescription(c.description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "#",
				SaucerPadding: "-",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(c.w)
			}),
		)
	}
	return c.bar
}

func (c *barCounter) SetTotal(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	if total <= 0 {
		// an empty or unknown total keeps the bar in spinner mode
		c.ensure(-1)
		return
	}
	if c.bar == nil {
		c.ensure(total)
		return
	}
	c.bar.ChangeMax(total)
}

func (c *barCounter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	c.ensure(-1).Add(1)
}

func (c *barCounter) Finish(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	bar := c.ensure(-1)
	if !bar.IsFinished() {
		bar.Finish()
	}
	// a full bar no longer re-renders, so the message gets its own line
	fmt.Fprintln(c.w, message)
	c.finished = true
}

func (c *barCounter) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bar != nil && !c.finished {
		c.bar.Finish()
	}
	c.finished = true
}
