// Package youtube adapts the hosting platform's Data API: the most-popular
// chart as a trend source and scheduled private uploads.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// ErrMissingCredentials is returned when OAuth upload credentials are incomplete.
var ErrMissingCredentials = errors.New("youtube: client id, client secret and refresh token are required")

// Credentials are the OAuth client and refresh token used for uploads.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// OAuthClient returns an HTTP client that refreshes access tokens from creds.
func OAuthClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, ErrMissingCredentials
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{yt.YoutubeUploadScope, yt.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return &http.Client{Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)}}, nil
}

// NewUploadService builds a Data API service authorised for uploads.
func NewUploadService(ctx context.Context, creds Credentials) (*yt.Service, error) {
	client, err := OAuthClient(ctx, creds)
	if err != nil {
		return nil, err
	}
	svc, err := yt.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// NewReadService builds a read-only service from an API key.
func NewReadService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*yt.Service, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: api key is required")
	}
	svc, err := yt.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}
