package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/founders/internal/shared"
)

// UserInfoAuthenticator validates tokens by calling the identity provider's OIDC userinfo endpoint.
type UserInfoAuthenticator struct {
	url    string
	client *http.Client
}

// NewUserInfoAuthenticator creates an authenticator for url. A nil client uses a 10 second timeout.
func NewUserInfoAuthenticator(url string, client *http.Client) *UserInfoAuthenticator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &UserInfoAuthenticator{url: url, client: client}
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// Authenticate sends token to the userinfo endpoint and maps the response to a [Principal].
func (a *UserInfoAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", shared.ErrAuthFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: identity provider rejected token", shared.ErrAuthFailed)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("%w: userinfo has no subject", shared.ErrAuthFailed)
	}
	return &Principal{Subject: info.Sub, Email: info.Email}, nil
}
