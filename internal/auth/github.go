package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GitHub endpoint defaults. Overridable for tests.
const (
	githubAuthorizeURL = "https://github.com/login/oauth/authorize"
	githubTokenURL     = "https://github.com/login/oauth/access_token"
	githubUserURL      = "https://api.github.com/user"
	githubEmailsURL    = "https://api.github.com/user/emails"
)

var (
	// ErrOAuthDisabled indicates GitHub credentials are not configured.
	ErrOAuthDisabled = errors.New("GitHub OAuth is not configured")
	// ErrExchangeFailed indicates the code-for-token exchange was rejected.
	ErrExchangeFailed = errors.New("OAuth code exchange failed")
)

// GitHubProfile is the subset of the GitHub user we keep.
type GitHubProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GitHubClient talks to GitHub's OAuth endpoints.
type GitHubClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	authorizeURL string
	tokenURL     string
	userURL      string
	emailsURL    string
}

// NewGitHubClient creates a client with conservative timeouts.
// Empty credentials produce a disabled client; handlers surface that as a
// configuration error rather than a broken redirect.
func NewGitHubClient(clientID, clientSecret string) *GitHubClient {
	return &GitHubClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		authorizeURL: githubAuthorizeURL,
		tokenURL:     githubTokenURL,
		userURL:      githubUserURL,
		emailsURL:    githubEmailsURL,
	}
}

// Enabled reports whether OAuth credentials are configured.
func (c *GitHubClient) Enabled() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthorizationURL builds the redirect URL for the login handshake.
// The state token must come from a StateStore issue.
func (c *GitHubClient) AuthorizationURL(state, redirectURI string) (string, error) {
	if !c.Enabled() {
		return "", ErrOAuthDisabled
	}

	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	q.Set("scope", "read:user user:email")

	return c.authorizeURL + "?" + q.Encode(), nil
}

// Exchange trades an authorization code for an access token.
func (c *GitHubClient) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	if !c.Enabled() {
		return "", ErrOAuthDisabled
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.Error != "" || payload.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", ErrExchangeFailed, payload.Error)
	}

	return payload.AccessToken, nil
}

// UserProfile fetches the authenticated user. If the public profile hides
// the email, the primary verified address is looked up separately.
func (c *GitHubClient) UserProfile(ctx context.Context, accessToken string) (*GitHubProfile, error) {
	var profile GitHubProfile
	if err := c.getJSON(ctx, c.userURL, accessToken, &profile); err != nil {
		return nil, err
	}

	if profile.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := c.getJSON(ctx, c.emailsURL, accessToken, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				profile.Email = e.Email
				break
			}
		}
	}

	return &profile, nil
}

func (c *GitHubClient) getJSON(ctx context.Context, rawURL, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github API status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}
	return nil
}
