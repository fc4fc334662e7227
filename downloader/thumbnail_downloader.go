package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"coverfetch/model"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 8 * time.Second

	maxImageBytes = 32 << 20
)

// Options configures a ThumbnailDownloader. Zero values fall back to the
// package defaults.
type Options struct {
	BaseDir        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	SkipExisting   bool
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// ThumbnailDownloader implements the Downloader interface over HTTP
type ThumbnailDownloader struct {
	baseDir        string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	skipExisting   bool
	logger         *zap.Logger
}

// NewThumbnailDownloader creates a new instance of ThumbnailDownloader
func NewThumbnailDownloader(opts Options) *ThumbnailDownloader {
	if opts.BaseDir == "" {
		opts.BaseDir = DefaultBaseDir
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &ThumbnailDownloader{
		baseDir:        opts.BaseDir,
		client:         client,
		maxRetries:     opts.MaxRetries,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
		skipExisting:   opts.SkipExisting,
		logger:         opts.Logger,
	}
}

// BaseDir returns the directory thumbnails are written to
func (d *ThumbnailDownloader) BaseDir() string {
	return d.baseDir
}

// Download implements the Downloader interface
func (d *ThumbnailDownloader) Download(ctx context.Context, song model.Song) (*Result, error) {
	imageURL, ok := song.PrimaryImage()
	if !ok {
		return &Result{Song: song, Skipped: true}, nil
	}

	start := time.Now()
	target := TargetPath(d.baseDir, song)

	if d.skipExisting {
		if info, err := os.Stat(target); err == nil && info.Size() > 0 {
			return &Result{Song: song, FilePath: target, Bytes: info.Size(), Existing: true}, nil
		}
	}

	data, attempts, err := d.fetch(ctx, song, imageURL)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(target, data); err != nil {
		return nil, NewDownloadErrorWithCause(ErrorFileSystemError, "failed to write thumbnail", err).
			WithSong(song.ID).
			WithContext("path", target)
	}

	return &Result{
		Song:     song,
		FilePath: target,
		Bytes:    int64(len(data)),
		Attempts: attempts,
		Duration: time.Since(start),
	}, nil
}

// fetch GETs imageURL, retrying transient failures with exponential backoff.
func (d *ThumbnailDownloader) fetch(ctx context.Context, song model.Song, imageURL string) ([]byte, int, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialBackoff
	b.MaxInterval = d.maxBackoff
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.maxRetries)), ctx)

	var (
		data     []byte
		attempts int
	)
	operation := func() error {
		attempts++
		body, err := d.get(ctx, imageURL)
		if err != nil {
			if !err.Transient() {
				return backoff.Permanent(err)
			}
			return err
		}
		data = body
		return nil
	}
	notify := func(err error, wait time.Duration) {
		d.logger.Debug("retrying thumbnail download",
			zap.String("song_id", song.ID),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var de *DownloadError
		switch {
		case errors.As(err, &de):
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			de = NewDownloadErrorWithCause(ErrorCancelled, "download cancelled", err)
		default:
			de = NewDownloadErrorWithCause(ErrorUnknown, "download failed", err)
		}
		return nil, attempts, de.WithSong(song.ID).WithContext("url", imageURL).WithContext("attempts", attempts)
	}

	return data, attempts, nil
}

// get performs one request attempt.
func (d *ThumbnailDownloader) get(ctx context.Context, imageURL string) ([]byte, *DownloadError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, NewDownloadErrorWithCause(ErrorUnknown, "failed to create request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		de := NewDownloadError(ErrorHTTPStatus, fmt.Sprintf("unexpected status %s", resp.Status))
		de.StatusCode = resp.StatusCode
		return nil, de
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if len(data) == 0 {
		return nil, NewDownloadError(ErrorNetworkFailure, "empty response body")
	}
	if len(data) > maxImageBytes {
		return nil, NewDownloadError(ErrorUnknown, fmt.Sprintf("image exceeds %d bytes", maxImageBytes))
	}
	if resp.ContentLength > 0 && int64(len(data)) != resp.ContentLength {
		return nil, NewDownloadError(ErrorNetworkFailure, "truncated response body")
	}
	return data, nil
}

func classifyTransportError(ctx context.Context, err error) *DownloadError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return NewDownloadErrorWithCause(ErrorCancelled, "download cancelled", ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewDownloadErrorWithCause(ErrorTimeout, "request timed out", err)
	}
	return NewDownloadErrorWithCause(ErrorNetworkFailure, "request failed", err)
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place, so path either holds the full image or does not exist.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".coverfetch-*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move thumbnail into place: %w", err)
	}
	return nil
}
