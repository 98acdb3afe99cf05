package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GithubConfig holds the GitHub OAuth application credentials.
type GithubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string `env:"GITHUB_REDIRECT_URL"`
}

// GithubAdapter implements ProviderAdapter for GitHub sign-in.
type GithubAdapter struct {
	config *oauth2.Config
}

// NewGithubAdapter creates a GitHub OAuth adapter.
func NewGithubAdapter(cfg GithubConfig) *GithubAdapter {
	return &GithubAdapter{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (a *GithubAdapter) Name() string { return ProviderGithub }

func (a *GithubAdapter) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for the user's GitHub profile.
// GitHub may hide the email on the user endpoint, so the emails API is
// consulted for the primary verified address.
func (a *GithubAdapter) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	client := a.config.Client(ctx, token)

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, githubUserURL, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch github profile: %w", err)
	}

	emailAddr := user.Email
	if emailAddr == "" {
		emailAddr, err = a.primaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &OAuthProfile{
		ProviderID: strconv.FormatInt(user.ID, 10),
		Email:      emailAddr,
		Name:       name,
	}, nil
}

func (a *GithubAdapter) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, githubEmailsURL, &emails); err != nil {
		return "", fmt.Errorf("failed to fetch github emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary {
			if !e.Verified {
				return "", ErrUnverifiedEmail
			}
			return e.Email, nil
		}
	}
	return "", ErrNoPrimaryEmail
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
