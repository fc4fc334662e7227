package model

import "github.com/goccy/go-json"

// Page is one bounded slice of a remote collection plus its continuation flag.
type Page[T any] struct {
	Items   []T
	Total   int
	HasNext bool
}

// RawItem is one undecoded record from a page.
type RawItem = json.RawMessage

// Playlist identifies one of the user's playlists.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackTotal int    `json:"track_total"`
}
