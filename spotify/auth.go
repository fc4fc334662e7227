package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTokenURL is the accounts service token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// Scopes needed to read saved tracks and private playlists.
var Scopes = []string{"user-library-read", "playlist-read-private"}

// ErrMissingCredentials is returned when neither an access token nor a
// complete refresh-token triple is available.
var ErrMissingCredentials = errors.New("missing spotify credentials")

// Credentials selects how a session obtains tokens. A non-empty AccessToken
// wins over the refresh grant.
type Credentials struct {
	AccessToken  string
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
}

// Session is an authenticated handle on the Web API.
type Session struct {
	HTTPClient  *http.Client
	TokenSource oauth2.TokenSource
}

// Authenticate builds a token source from creds and fetches one token
// eagerly, so a rejected refresh grant fails here. A static access token is
// taken as given; Client.CurrentUser checks that it is accepted.
func Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	var ts oauth2.TokenSource

	switch {
	case creds.AccessToken != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	case creds.ClientID != "" && creds.ClientSecret != "" && creds.RefreshToken != "":
		tokenURL := creds.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		conf := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		}
		ts = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	default:
		return nil, ErrMissingCredentials
	}

	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = 30 * time.Second

	return &Session{HTTPClient: client, TokenSource: ts}, nil
}
