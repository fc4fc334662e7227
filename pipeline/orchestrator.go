package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coverfetch/downloader"
	"coverfetch/model"
	"coverfetch/progress"
)

// DefaultConcurrency caps simultaneous downloads per pass.
const DefaultConcurrency = 16

// Source is one remote collection plus the converter for its records.
type Source[T any] struct {
	Name    string
	Fetch   FetchFunc[T]
	Convert func(T) (model.Song, error)
}

// RunnerOptions configures a Runner. Zero values use defaults.
type RunnerOptions struct {
	// Concurrency caps in-flight downloads; zero or negative is unbounded.
	Concurrency int
	PageSize    int
	Dedup       *Dedup
	Progress    progress.Factory
	Logger      *zap.Logger
}

// Runner holds what every pass of a run shares: the downloader, its
// concurrency cap, the dedup set and the progress factory.
type Runner struct {
	downloader  downloader.Downloader
	concurrency int
	pageSize    int
	dedup       *Dedup
	progress    progress.Factory
	logger      *zap.Logger
}

// NewRunner creates a Runner around dl
func NewRunner(dl downloader.Downloader, opts RunnerOptions) *Runner {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Progress == nil {
		opts.Progress = progress.NopFactory
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		downloader:  dl,
		concurrency: opts.Concurrency,
		pageSize:    opts.PageSize,
		dedup:       opts.Dedup,
		progress:    opts.Progress,
		logger:      opts.Logger,
	}
}

// outcomes is written by download goroutines.
type outcomes struct {
	succeeded atomic.Int64
	written   atomic.Int64
	failed    atomic.Int64
}

// Process runs one full pass over src: fetch pages in order, convert every
// item, dispatch one download per new song without waiting for it, then
// drain all downloads. Download failures are logged and counted but never
// returned; only a page-fetch error fails the pass, and even then every
// dispatched download is drained before returning.
func Process[T any](ctx context.Context, r *Runner, src Source[T]) (Stats, error) {
	start := time.Now()
	log := r.logger.With(zap.String("list", src.Name))

	reporter := r.progress(src.Name)
	defer reporter.Close()
	fetchCounter, downloadCounter := reporter.Fetch(), reporter.Download()

	stats := Stats{List: src.Name, State: StateIdle}
	pager := NewPaginator(src.Fetch, r.pageSize)
	setState := func(s State) {
		stats.State = s
		log.Debug("state change", zap.Stringer("state", s), zap.Int("offset", pager.Offset()))
	}

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	var out outcomes

	dispatch := func(song model.Song) {
		stats.Dispatched++
		g.Go(func() error {
			result, err := r.downloader.Download(ctx, song)
			downloadCounter.Inc()
			if err != nil {
				out.failed.Inc()
				fields := []zap.Field{
					zap.String("song_id", song.ID),
					zap.String("song_name", song.Name),
					zap.Error(err),
				}
				var de *downloader.DownloadError
				if errors.As(err, &de) {
					fields = append(fields, zap.Stringer("error_type", de.Type))
				}
				if de != nil && de.IsType(downloader.ErrorCancelled) {
					log.Warn("thumbnail download cancelled", fields...)
				} else {
					log.Error("thumbnail download failed", fields...)
				}
				// nil keeps siblings running; the failure is already counted
				return nil
			}
			out.succeeded.Inc()
			if result.Written() {
				out.written.Inc()
			}
			log.Debug("thumbnail ready",
				zap.String("song_id", song.ID),
				zap.String("path", result.FilePath),
				zap.Bool("skipped", result.Skipped),
				zap.Bool("existing", result.Existing),
				zap.Int("attempts", result.Attempts))
			return nil
		})
	}

	var fetchErr error
	setState(StateFetching)
	for page, err := range pager.Pages(ctx) {
		if err != nil {
			fetchErr = err
			break
		}
		stats.Pages++
		fetchCounter.SetTotal(page.Total)
		downloadCounter.SetTotal(page.Total)

		setState(StateDispatching)
		for _, item := range page.Items {
			stats.Observed++
			song, err := src.Convert(item)
			switch {
			case err != nil:
				stats.Skipped++
				log.Warn("skipping item", zap.Error(err))
			case !r.dedup.Claim(song):
				stats.Duplicates++
				log.Debug("duplicate song", zap.String("song_id", song.ID), zap.String("song_name", song.Name))
			default:
				dispatch(song)
			}
			fetchCounter.Inc()
		}
		setState(StateFetching)
	}
	if fetchErr == nil {
		fetchCounter.Finish("Done fetching " + src.Name)
	}

	setState(StateDraining)
	downloadCounter.SetTotal(stats.Dispatched)
	_ = g.Wait()
	downloadCounter.Finish("Thumbnails downloaded")

	stats.Succeeded = int(out.succeeded.Load())
	stats.Written = int(out.written.Load())
	stats.Failed = int(out.failed.Load())
	stats.Elapsed = time.Since(start)

	if fetchErr != nil {
		setState(StateFailed)
		log.Error("pass failed", zap.Object("stats", stats), zap.Error(fetchErr))
		return stats, fmt.Errorf("fetching %s: %w", src.Name, fetchErr)
	}

	setState(StateDone)
	log.Info("pass complete", zap.Object("stats", stats))
	return stats, nil
}
