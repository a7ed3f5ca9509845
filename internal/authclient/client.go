package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

// ErrRejected means the identity provider refused the refresh token.
var ErrRejected = errors.New("refresh rejected")

const maxBody = 1 << 20

// Client asks the identity provider to rotate an expired session.
// The storefront never issues tokens itself.
type Client struct {
	refreshURL string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		refreshURL: strings.TrimRight(authServiceURL, "/") + "/auth/refresh",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Tokens is a rotated pair with the expiries the cookies are set to.
type Tokens struct {
	Access         string
	Refresh        string
	AccessExpires  time.Time
	RefreshExpires time.Time
}

type refreshPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_exp"`
	RefreshExp   int64  `json:"refresh_exp"`
}

func (c *Client) Refresh(ctx context.Context, refreshToken, accessToken string) (*Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.refreshURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build refresh request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: refreshToken})
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: accessToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity provider answered %d", resp.StatusCode)
	}

	var p refreshPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if p.AccessToken == "" || p.RefreshToken == "" {
		return nil, errors.New("refresh response without tokens")
	}

	return &Tokens{
		Access:         p.AccessToken,
		Refresh:        p.RefreshToken,
		AccessExpires:  time.Unix(p.AccessExp, 0),
		RefreshExpires: time.Unix(p.RefreshExp, 0),
	}, nil
}
