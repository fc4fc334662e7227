package spotify

import (
	"errors"
	"fmt"
)

// SkipReason classifies why a raw item could not become a song.
type SkipReason int

const (
	SkipMalformed SkipReason = iota
	SkipNoTrack
	SkipNotTrack
	SkipNoID
)

// String returns the string representation of the skip reason
func (r SkipReason) String() string {
	switch r {
	case SkipMalformed:
		return "malformed record"
	case SkipNoTrack:
		return "no playable track"
	case SkipNotTrack:
		return "not a track"
	case SkipNoID:
		return "no vendor id"
	default:
		return "unknown"
	}
}

// ItemIdentity is the subset of a raw item kept for diagnosing skips.
type ItemIdentity struct {
	Name    string `json:"name,omitempty"`
	URI     string `json:"uri,omitempty"`
	Type    string `json:"type,omitempty"`
	AddedAt string `json:"added_at,omitempty"`
	IsLocal bool   `json:"is_local,omitempty"`
}

// SkipError reports a raw item that was dropped during conversion.
type SkipError struct {
	Reason SkipReason   `json:"reason"`
	Item   ItemIdentity `json:"item"`
}

// Error implements the error interface
func (e *SkipError) Error() string {
	return fmt.Sprintf("skipping item: %s (name=%q uri=%q type=%q local=%t)",
		e.Reason, e.Item.Name, e.Item.URI, e.Item.Type, e.Item.IsLocal)
}

// IsSkip reports whether err is a SkipError, optionally of one of the given reasons.
func IsSkip(err error, reasons ...SkipReason) bool {
	var se *SkipError
	if !errors.As(err, &se) {
		return false
	}
	if len(reasons) == 0 {
		return true
	}
	for _, r := range reasons {
		if se.Reason == r {
			return true
		}
	}
	return false
}

// APIError is a non-2xx answer from the Web API.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Path    string `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify api %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("spotify api %s: status %d: %s", e.Path, e.Status, e.Message)
}
