package identitytoolkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"birthday-reminders/internal/platform/httpclient"
	"birthday-reminders/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity provider client not configured")
	ErrUnauthorized  = errors.New("identity provider unauthorized")
	ErrUpstream      = errors.New("identity provider upstream error")
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com"

// Config del cliente del proveedor de identidad.
// APIKey es la web API key del proyecto (la misma que usa el frontend).
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Opcional (tests).
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    httpclient.NewWithTransport(timeout, cfg.Transport),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

// LookupToken resuelve un ID token vía accounts:lookup. Un token vencido,
// revocado o mal formado vuelve como 400 INVALID_ID_TOKEN.
func (c *Client) LookupToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	endpoint := c.baseURL + "/v1/accounts:lookup?key=" + url.QueryEscape(c.apiKey)

	var out lookupResponse
	err := c.http.DoJSON(ctx, http.MethodPost, endpoint, nil, map[string]string{"idToken": token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(out.Users) == 0 {
		return auth.Claims{}, ErrUnauthorized
	}
	u := out.Users[0]
	if u.Disabled {
		return auth.Claims{}, ErrUnauthorized
	}

	uid := strings.TrimSpace(u.LocalID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing localId", ErrUpstream)
	}

	return auth.Claims{
		UserID: uid,
		Email:  strings.TrimSpace(u.Email),
	}, nil
}
