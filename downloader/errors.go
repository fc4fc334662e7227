package downloader

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of download errors
type ErrorType int

const (
	ErrorNetworkFailure ErrorType = iota
	ErrorHTTPStatus
	ErrorTimeout
	ErrorFileSystemError
	ErrorCancelled
	ErrorUnknown
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorNetworkFailure:
		return "network_failure"
	case ErrorHTTPStatus:
		return "http_status"
	case ErrorTimeout:
		return "timeout"
	case ErrorFileSystemError:
		return "filesystem_error"
	case ErrorCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DownloadError represents a structured error that occurred during download
type DownloadError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	SongID     string                 `json:"song_id,omitempty"`
	StatusCode int                    `json:"status_code,omitempty"`
	Cause      error                  `json:"cause,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (de *DownloadError) Error() string {
	msg := fmt.Sprintf("%s: %s", de.Type.String(), de.Message)
	if de.SongID != "" {
		msg = fmt.Sprintf("song %s: %s", de.SongID, msg)
	}
	if de.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, de.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error
func (de *DownloadError) Unwrap() error {
	return de.Cause
}

// NewDownloadError creates a new DownloadError with the specified type and message
func NewDownloadError(errorType ErrorType, message string) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewDownloadErrorWithCause creates a new DownloadError with a cause
func NewDownloadErrorWithCause(errorType ErrorType, message string, cause error) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (de *DownloadError) WithContext(key string, value interface{}) *DownloadError {
	if de.Context == nil {
		de.Context = make(map[string]interface{})
	}
	de.Context[key] = value
	return de
}

// WithSong tags the error with the song it belongs to
func (de *DownloadError) WithSong(songID string) *DownloadError {
	de.SongID = songID
	return de
}

// IsType checks if the error is of a specific type
func (de *DownloadError) IsType(errorType ErrorType) bool {
	return de.Type == errorType
}

// Transient reports whether retrying the same request may succeed.
func (de *DownloadError) Transient() bool {
	switch de.Type {
	case ErrorNetworkFailure, ErrorTimeout:
		return true
	case ErrorHTTPStatus:
		return de.StatusCode >= 500 || de.StatusCode == 429
	default:
		return false
	}
}

// IsDownloadError checks if an error is a DownloadError and optionally of a specific type
func IsDownloadError(err error, errorType ...ErrorType) bool {
	var de *DownloadError
	if !errors.As(err, &de) {
		return false
	}
	if len(errorType) == 0 {
		return true
	}
	for _, et := range errorType {
		if de.Type == et {
			return true
		}
	}
	return false
}
