package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coverfetch/config"
	"coverfetch/downloader"
	"coverfetch/logger"
	"coverfetch/pipeline"
	"coverfetch/progress"
	"coverfetch/spotify"
)

type downloadOptions struct {
	playlistID   string
	allPlaylists bool
	output       string
	concurrency  int
	noDedup      bool
	noProgress   bool
	skipExisting bool
}

func newDownloadCmd() *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download thumbnails for saved tracks, one playlist or all playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") {
				opts.concurrency = -1
			}
			return runDownload(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.playlistID, "playlist-id", "p", "", "download thumbnails for one playlist (id, URI or URL)")
	flags.BoolVar(&opts.allPlaylists, "playlists", false, "download thumbnails for every playlist of the user")
	flags.StringVarP(&opts.output, "output", "o", "", "image directory (overrides IMAGES_DIR)")
	flags.IntVarP(&opts.concurrency, "concurrency", "c", 0, "simultaneous downloads, 0 for unbounded (overrides DOWNLOAD_CONCURRENCY)")
	flags.BoolVar(&opts.noDedup, "no-dedup", false, "download songs again when they appear in several lists")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "report progress as log lines instead of bars")
	flags.BoolVar(&opts.skipExisting, "skip-existing", false, "keep thumbnails already on disk (overrides SKIP_EXISTING)")
	cmd.MarkFlagsMutuallyExclusive("playlist-id", "playlists")

	return cmd
}

func runDownload(ctx context.Context, opts *downloadOptions, stderr io.Writer) error {
	var playlistID string
	if opts.playlistID != "" {
		id, err := spotify.ParsePlaylistID(opts.playlistID)
		if err != nil {
			return fmt.Errorf("%w: %q", err, opts.playlistID)
		}
		playlistID = id
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if opts.output != "" {
		cfg.ImagesDir = opts.output
	}
	if opts.concurrency >= 0 {
		cfg.Concurrency = opts.concurrency
	}
	if opts.skipExisting {
		cfg.SkipExisting = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogFile, Console: stderr})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.NewString()))

	session, err := spotify.Authenticate(ctx, spotify.Credentials{
		AccessToken:  cfg.AccessToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		TokenURL:     cfg.TokenURL,
	})
	if err != nil {
		return err
	}
	client := spotify.NewClient(session.HTTPClient, cfg.APIURL, log)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	dl := downloader.NewThumbnailDownloader(downloader.Options{
		BaseDir:      cfg.ImagesDir,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.Retries,
		SkipExisting: cfg.SkipExisting,
		Logger:       log,
	})

	var dedup *pipeline.Dedup
	if !opts.noDedup {
		dedup = pipeline.NewDedup()
	}

	reporters := progress.BarFactory(stderr)
	if opts.noProgress || !isTerminal(stderr) {
		reporters = progress.LogFactory(log, progress.DefaultLogInterval)
	}

	runner := pipeline.NewRunner(dl, pipeline.RunnerOptions{
		Concurrency: cfg.Concurrency,
		Dedup:       dedup,
		Progress:    reporters,
		Logger:      log,
	})
	library := pipeline.NewLibrary(client, runner, log)

	log.Info("starting run",
		zap.String("user", user.ID),
		zap.String("images_dir", dl.BaseDir()),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("dedup", dedup != nil),
		zap.Bool("skip_existing", cfg.SkipExisting))

	switch {
	case playlistID != "":
		stats, err := library.Playlist(ctx, playlistID)
		if err != nil {
			return err
		}
		log.Info("run complete", zap.Object("stats", stats), zap.Int("unique_songs", dedup.Len()))
	case opts.allPlaylists:
		summary, err := library.AllPlaylists(ctx)
		if err != nil {
			return err
		}
		log.Info("run complete",
			zap.Int("playlists", summary.Playlists),
			zap.Object("stats", summary.Totals()),
			zap.Int("unique_songs", dedup.Len()))
	default:
		stats, err := library.Liked(ctx)
		if err != nil {
			return err
		}
		log.Info("run complete", zap.Object("stats", stats), zap.Int("unique_songs", dedup.Len()))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
