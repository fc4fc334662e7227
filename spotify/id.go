package spotify

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidID is returned when an identifier contains characters outside
// Spotify's base62 alphabet.
var ErrInvalidID = errors.New("invalid identifier")

// ValidateID checks that id is a non-empty base62 string.
func ValidateID(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return ErrInvalidID
		}
	}
	return nil
}

// ParsePlaylistID accepts a bare id, a spotify:playlist:<id> URI or an
// open.spotify.com playlist URL and returns the validated id.
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)

	if rest, ok := strings.CutPrefix(input, "spotify:playlist:"); ok {
		input = rest
	} else if strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://") {
		u, err := url.Parse(input)
		if err != nil || u.Host != "open.spotify.com" {
			return "", ErrInvalidID
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] != "playlist" {
			return "", ErrInvalidID
		}
		input = parts[len(parts)-1]
	}

	if err := ValidateID(input); err != nil {
		return "", err
	}
	return input, nil
}
