package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coverfetch/model"
	"coverfetch/spotify"
)

// LikedListName labels the saved-tracks pass.
const LikedListName = "liked/saved songs"

// Catalog is the remote source the library pages through. *spotify.Client
// implements it.
type Catalog interface {
	SavedTracks(ctx context.Context, limit, offset int) (model.Page[model.RawItem], error)
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (model.Page[model.RawItem], error)
	Playlists(ctx context.Context, limit, offset int) (model.Page[model.RawItem], error)
	Playlist(ctx context.Context, playlistID string) (model.Playlist, error)
}

// Library runs passes over the user's saved tracks and playlists.
type Library struct {
	catalog Catalog
	runner  *Runner
	logger  *zap.Logger
}

// NewLibrary creates a Library
func NewLibrary(catalog Catalog, runner *Runner, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{catalog: catalog, runner: runner, logger: logger}
}

// Liked downloads thumbnails for the user's saved tracks.
func (l *Library) Liked(ctx context.Context) (Stats, error) {
	return Process(ctx, l.runner, Source[model.RawItem]{
		Name:    LikedListName,
		Fetch:   l.catalog.SavedTracks,
		Convert: spotify.ConvertSavedTrack,
	})
}

// Playlist downloads thumbnails for one playlist. A failed lookup (for
// example a playlist deleted mid-run) is logged and reported as a skipped
// pass, not an error.
func (l *Library) Playlist(ctx context.Context, playlistID string) (Stats, error) {
	playlist, err := l.catalog.Playlist(ctx, playlistID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Stats{List: playlistID, State: StateFailed}, ctxErr
		}
		l.logger.Warn("encountered error for playlist, skipping",
			zap.String("playlist_id", playlistID),
			zap.Error(err))
		return Stats{List: playlistID, State: StateSkipped}, nil
	}

	return Process(ctx, l.runner, Source[model.RawItem]{
		Name: `"` + playlist.Name + `"`,
		Fetch: func(ctx context.Context, limit, offset int) (model.Page[model.RawItem], error) {
			return l.catalog.PlaylistTracks(ctx, playlist.ID, limit, offset)
		},
		Convert: spotify.ConvertPlaylistItem,
	})
}

// AllPlaylists runs one pass per playlist of the user, sequentially. Lookup
// failures and page-fetch failures inside a playlist end only that
// playlist's pass; failing to list the playlists themselves is fatal.
func (l *Library) AllPlaylists(ctx context.Context) (Summary, error) {
	var summary Summary

	pager := NewPaginator[model.RawItem](l.catalog.Playlists, l.runner.pageSize)
	for raw, err := range pager.Items(ctx) {
		if err != nil {
			return summary, fmt.Errorf("listing playlists: %w", err)
		}

		playlist, err := spotify.ConvertPlaylist(raw)
		if err != nil {
			summary.SkippedPlaylists++
			l.logger.Warn("skipping playlist record", zap.Error(err))
			continue
		}
		summary.Playlists++

		stats, err := l.Playlist(ctx, playlist.ID)
		summary.Runs = append(summary.Runs, stats)
		switch {
		case err != nil && ctx.Err() != nil:
			return summary, err
		case err != nil:
			summary.FailedPlaylists++
			l.logger.Error("playlist pass failed, continuing",
				zap.String("playlist_id", playlist.ID),
				zap.String("playlist_name", playlist.Name),
				zap.Error(err))
		case stats.State == StateSkipped:
			summary.SkippedPlaylists++
		}
	}

	l.logger.Info("all playlists complete",
		zap.Int("playlists", summary.Playlists),
		zap.Int("skipped_playlists", summary.SkippedPlaylists),
		zap.Int("failed_playlists", summary.FailedPlaylists),
		zap.Object("totals", summary.Totals()))
	return summary, nil
}
