package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"coverfetch/model"
)

// DefaultBaseURL is the public Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// Client is a thin Web API client exposing the paged sources the pipeline
// consumes. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client. httpClient is expected to carry authorization
// (see Session.HTTPClient).
func NewClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// pageEnvelope is the common paging object returned by list endpoints.
type pageEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
	Next  *string           `json:"next"`
}

// SavedTracks fetches one page of the current user's saved tracks.
func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (model.Page[model.RawItem], error) {
	return c.getPage(ctx, "/me/tracks", limit, offset)
}

// PlaylistTracks fetches one page of a playlist's items.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (model.Page[model.RawItem], error) {
	if err := ValidateID(playlistID); err != nil {
		return model.Page[model.RawItem]{}, fmt.Errorf("playlist %q: %w", playlistID, err)
	}
	return c.getPage(ctx, "/playlists/"+playlistID+"/tracks", limit, offset)
}

// Playlists fetches one page of the current user's playlists.
func (c *Client) Playlists(ctx context.Context, limit, offset int) (model.Page[model.RawItem], error) {
	return c.getPage(ctx, "/me/playlists", limit, offset)
}

// User is the account a session acts for.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// CurrentUser fetches the authenticated user. It is the cheapest call that
// proves the token is accepted.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, "/me", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Playlist looks up a single playlist's metadata.
func (c *Client) Playlist(ctx context.Context, playlistID string) (model.Playlist, error) {
	if err := ValidateID(playlistID); err != nil {
		return model.Playlist{}, fmt.Errorf("playlist %q: %w", playlistID, err)
	}

	q := url.Values{}
	q.Set("fields", "id,name,uri,owner(id,display_name),tracks(total)")

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/playlists/"+playlistID, q, &raw); err != nil {
		return model.Playlist{}, err
	}

	playlist, err := ConvertPlaylist(raw)
	if err != nil {
		return model.Playlist{}, fmt.Errorf("playlist %q: %w", playlistID, err)
	}
	return playlist, nil
}

func (c *Client) getPage(ctx context.Context, path string, limit, offset int) (model.Page[model.RawItem], error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var env pageEnvelope
	if err := c.getJSON(ctx, path, q, &env); err != nil {
		return model.Page[model.RawItem]{}, err
	}

	page := model.Page[model.RawItem]{
		Items:   env.Items,
		Total:   env.Total,
		HasNext: env.Next != nil && *env.Next != "",
	}

	c.logger.Debug("fetched page",
		zap.String("path", path),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
		zap.Int("items", len(page.Items)),
		zap.Int("total", page.Total),
		zap.Bool("has_next", page.HasNext))

	return page, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(path string, resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Path: path}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && len(env.Error) > 0 {
		// The error member is an object for API errors and a string for
		// auth errors.
		var obj struct {
			Message string `json:"message"`
		}
		var s string
		switch {
		case json.Unmarshal(env.Error, &obj) == nil && obj.Message != "":
			apiErr.Message = obj.Message
		case json.Unmarshal(env.Error, &s) == nil:
			apiErr.Message = s
		}
	}
	return apiErr
}
