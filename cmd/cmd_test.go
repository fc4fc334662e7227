package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"coverfetch/downloader"
	"coverfetch/model"
	"coverfetch/spotify"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_PrintsHelp(t *testing.T) {
	out, err := execute(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "download") {
		t.Errorf("expected help listing the download command, got %q", out)
	}
}

func TestDownload_InvalidPlaylistID(t *testing.T) {
	// no credentials: reaching config loading would fail differently
	os.Clearenv()

	tests := []string{"", "abc-def", "spotify:playlist:a b", "https://example.com/playlist/abc"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, err := execute(t, "download", "--playlist-id", id+"!")
			if !errors.Is(err, spotify.ErrInvalidID) {
				t.Fatalf("expected invalid identifier error, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), "invalid identifier") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestDownload_FlagsMutuallyExclusive(t *testing.T) {
	os.Clearenv()
	_, err := execute(t, "download", "-p", "37i9dQZF1DXcBWIGoYBM5M", "--playlists")
	if err == nil {
		t.Fatal("expected an error for --playlist-id with --playlists")
	}
}

func TestDownload_MissingCredentials(t *testing.T) {
	os.Clearenv()
	_, err := execute(t, "download")
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

var coverBytes = []byte{0xFF, 0xD8, 0xFF, 0xD9}

// fakeAPI serves /me, one page of saved tracks and the cover images.
type fakeAPI struct {
	srv          *httptest.Server
	trackPages   atomic.Int32
	imageFetches atomic.Int32
}

func newFakeAPI(t *testing.T, token string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			api.imageFetches.Add(1)
			w.Write(coverBytes)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"status":401,"message":"Invalid access token"}}`)
			return
		}
		switch r.URL.Path {
		case "/v1/me":
			fmt.Fprint(w, `{"id":"listener","display_name":"Listener"}`)
		case "/v1/me/tracks":
			api.trackPages.Add(1)
			fmt.Fprintf(w, `{"items":[
				{"added_at":"2024-01-01T00:00:00Z","track":{"type":"track","id":"t1","name":"First","artists":[{"name":"A"}],"album":{"images":[{"url":"%[1]s/img/1.jpg"}]}}},
				{"added_at":"2024-01-01T00:00:00Z","track":null},
				{"added_at":"2024-01-01T00:00:00Z","track":{"type":"track","id":"t2","name":"Second","artists":[],"album":{"images":[]}}}
			],"total":3,"next":null}`, api.srv.URL)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func setupEnv(t *testing.T, api *fakeAPI, token string) {
	t.Helper()
	os.Clearenv()
	t.Setenv("SPOTIFY_ACCESS_TOKEN", token)
	t.Setenv("SPOTIFY_API_URL", api.srv.URL+"/v1")
}

func TestDownload_SavedTracksEndToEnd(t *testing.T) {
	api := newFakeAPI(t, "test-token")
	setupEnv(t, api, "test-token")
	dir := t.TempDir()

	out, err := execute(t, "download", "-o", dir, "--no-progress", "-c", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	first := downloader.TargetPath(dir, model.Song{ID: "t1", Name: "First"})
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("expected %s: %v", first, err)
	}
	if !bytes.Equal(data, coverBytes) {
		t.Errorf("unexpected file contents %v", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one thumbnail (second song has no images), got %d", len(entries))
	}
	if !strings.Contains(out, "run complete") || !strings.Contains(out, "listener") {
		t.Errorf("expected run summary in log output, got %q", out)
	}
}

func TestDownload_RejectedTokenFailsBeforeFetching(t *testing.T) {
	api := newFakeAPI(t, "test-token")
	setupEnv(t, api, "expired-token")
	dir := t.TempDir()

	_, err := execute(t, "download", "-o", dir, "--no-progress")
	var apiErr *spotify.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 from the token check, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "authentication failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if n := api.trackPages.Load(); n != 0 {
		t.Errorf("expected no page fetch, got %d", n)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestDownload_SkipExistingKeepsFiles(t *testing.T) {
	api := newFakeAPI(t, "test-token")
	setupEnv(t, api, "test-token")
	dir := t.TempDir()

	first := downloader.TargetPath(dir, model.Song{ID: "t1", Name: "First"})
	if err := os.WriteFile(first, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "download", "-o", dir, "--no-progress", "--skip-existing")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if n := api.imageFetches.Load(); n != 0 {
		t.Errorf("expected the existing thumbnail to be kept, got %d image requests", n)
	}
	if data, _ := os.ReadFile(first); string(data) != "old" {
		t.Errorf("existing thumbnail was overwritten: %q", data)
	}

	// without the flag the file is refreshed
	if _, err := execute(t, "download", "-o", dir, "--no-progress"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(first); !bytes.Equal(data, coverBytes) {
		t.Errorf("expected refreshed thumbnail, got %q", data)
	}
}
