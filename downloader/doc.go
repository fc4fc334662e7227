// Package downloader fetches cover-art thumbnails for songs and stores them
// on local disk.
//
// The package defines:
//   - Downloader: the contract the pipeline dispatches tasks against
//   - ThumbnailDownloader: an HTTP implementation with per-request timeouts
//     and exponential backoff for transient failures
//   - Error handling with structured DownloadError types
//   - TargetPath: the deterministic on-disk name for a song's thumbnail
//
// A ThumbnailDownloader holds one *http.Client that is shared read-only by all
// concurrent Download calls.
package downloader
