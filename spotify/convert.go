package spotify

import (
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"coverfetch/model"
)

// ConvertSavedTrack maps one "saved tracks" record into a Song.
func ConvertSavedTrack(raw model.RawItem) (model.Song, error) {
	return convertWrapped(raw)
}

// ConvertPlaylistItem maps one playlist item into a Song. Episodes, removed
// tracks and local files are reported as a *SkipError.
func ConvertPlaylistItem(raw model.RawItem) (model.Song, error) {
	return convertWrapped(raw)
}

// ConvertPlaylist maps one "my playlists" record into a Playlist.
func ConvertPlaylist(raw model.RawItem) (model.Playlist, error) {
	if !gjson.ValidBytes(raw) {
		return model.Playlist{}, &SkipError{Reason: SkipMalformed}
	}
	rec := gjson.ParseBytes(raw)
	if !rec.IsObject() {
		return model.Playlist{}, &SkipError{Reason: SkipMalformed}
	}

	id := rec.Get("id")
	if id.Type != gjson.String || id.String() == "" {
		return model.Playlist{}, &SkipError{
			Reason: SkipNoID,
			Item:   ItemIdentity{Name: rec.Get("name").String(), URI: rec.Get("uri").String(), Type: "playlist"},
		}
	}

	owner := rec.Get("owner.display_name").String()
	if owner == "" {
		owner = rec.Get("owner.id").String()
	}
	total := rec.Get("tracks.total")
	if !total.Exists() {
		total = rec.Get("items.total")
	}

	return model.Playlist{
		ID:         id.String(),
		Name:       rec.Get("name").String(),
		Owner:      owner,
		TrackTotal: int(total.Int()),
	}, nil
}

// convertWrapped handles the {"added_at": ..., "track": {...}} envelope shared
// by saved tracks and playlist items.
func convertWrapped(raw model.RawItem) (model.Song, error) {
	if !gjson.ValidBytes(raw) {
		return model.Song{}, &SkipError{Reason: SkipMalformed}
	}
	rec := gjson.ParseBytes(raw)
	if !rec.IsObject() {
		return model.Song{}, &SkipError{Reason: SkipMalformed}
	}

	addedAt := rec.Get("added_at").String()
	track := rec.Get("track")
	if !track.Exists() || track.Type == gjson.Null {
		return model.Song{}, &SkipError{Reason: SkipNoTrack, Item: ItemIdentity{AddedAt: addedAt}}
	}
	if !track.IsObject() {
		return model.Song{}, &SkipError{Reason: SkipMalformed, Item: ItemIdentity{AddedAt: addedAt}}
	}

	ident := ItemIdentity{
		Name:    track.Get("name").String(),
		URI:     track.Get("uri").String(),
		Type:    track.Get("type").String(),
		AddedAt: addedAt,
		IsLocal: track.Get("is_local").Bool() || rec.Get("is_local").Bool(),
	}

	if ident.Type != "" && ident.Type != "track" {
		return model.Song{}, &SkipError{Reason: SkipNotTrack, Item: ident}
	}

	id := track.Get("id")
	if id.Type != gjson.String || id.String() == "" {
		return model.Song{}, &SkipError{Reason: SkipNoID, Item: ident}
	}

	artists := lo.FilterMap(track.Get("artists").Array(), func(a gjson.Result, _ int) (string, bool) {
		name := a.Get("name").String()
		return name, name != ""
	})
	images := lo.FilterMap(track.Get("album.images").Array(), func(img gjson.Result, _ int) (string, bool) {
		u := img.Get("url").String()
		return u, u != ""
	})

	return model.Song{
		ID:      id.String(),
		Name:    ident.Name,
		Artists: artists,
		Images:  images,
	}, nil
}
