package progress

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultLogInterval is how often a LogReporter emits a snapshot.
const DefaultLogInterval = 2 * time.Second

// LogReporter reports progress as periodic structured log lines. It is used
// when stderr is not a terminal.
type LogReporter struct {
	// Configuration
	updateInterval time.Duration
	logger         *zap.Logger
	listName       string

	fetch    *logCounter
	download *logCounter

	// Goroutine management
	mu        sync.Mutex
	isRunning bool
	ticker    *time.Ticker
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewLogReporter creates a LogReporter and starts its update loop.
func NewLogReporter(logger *zap.Logger, listName string, interval time.Duration) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultLogInterval
	}
	lr := &LogReporter{
		updateInterval: interval,
		logger:         logger,
		listName:       listName,
	}
	lr.fetch = &logCounter{name: "fetch", owner: lr}
	lr.download = &logCounter{name: "download", owner: lr}
	lr.start()
	return lr
}

// LogFactory returns a Factory producing LogReporters.
func LogFactory(logger *zap.Logger, interval time.Duration) Factory {
	return func(listName string) Reporter {
		return NewLogReporter(logger, listName, interval)
	}
}

// Fetch returns the fetch counter
func (lr *LogReporter) Fetch() Counter { return lr.fetch }

// Download returns the download counter
func (lr *LogReporter) Download() Counter { return lr.download }

func (lr *LogReporter) start() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	lr.stopChan = make(chan struct{})
	lr.doneChan = make(chan struct{})
	lr.ticker = time.NewTicker(lr.updateInterval)
	lr.isRunning = true

	go lr.updateLoop()
}

// Close stops the update loop and emits a final snapshot
func (lr *LogReporter) Close() {
	lr.mu.Lock()
	if !lr.isRunning {
		lr.mu.Unlock()
		return
	}
	close(lr.stopChan)
	lr.isRunning = false
	lr.mu.Unlock()

	<-lr.doneChan
	lr.ticker.Stop()
	lr.logSnapshot()
}

func (lr *LogReporter) updateLoop() {
	defer close(lr.doneChan)

	var lastFetched, lastDownloaded int64 = -1, -1
	for {
		select {
		case <-lr.stopChan:
			return
		case <-lr.ticker.C:
			fetched, downloaded := lr.fetch.done.Load(), lr.download.done.Load()
			// Only report when something moved since the last tick
			if fetched == lastFetched && downloaded == lastDownloaded {
				continue
			}
			lastFetched, lastDownloaded = fetched, downloaded
			lr.logSnapshot()
		}
	}
}

func (lr *LogReporter) logSnapshot() {
	lr.logger.Info("progress",
		zap.String("list", lr.listName),
		zap.Int64("fetched", lr.fetch.done.Load()),
		zap.Int64("fetch_total", lr.fetch.total.Load()),
		zap.Int64("downloaded", lr.download.done.Load()),
		zap.Int64("download_total", lr.download.total.Load()))
}

type logCounter struct {
	name     string
	owner    *LogReporter
	total    atomic.Int64
	done     atomic.Int64
	finished atomic.Bool
}

func (c *logCounter) SetTotal(total int) {
	c.total.Store(int64(total))
}

func (c *logCounter) Inc() {
	c.done.Inc()
}

func (c *logCounter) Finish(message string) {
	if !c.finished.CompareAndSwap(false, true) {
		return
	}
	c.owner.logger.Info(message,
		zap.String("list", c.owner.listName),
		zap.String("counter", c.name),
		zap.Int64("count", c.done.Load()),
		zap.Int64("total", c.total.Load()))
}
