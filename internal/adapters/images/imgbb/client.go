package imgbb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"birthday-reminders/internal/platform/httpclient"
)

var (
	ErrUnauthorized = errors.New("imgbb unauthorized")
	ErrUpstream     = errors.New("imgbb upstream error")
)

const DefaultUploadURL = "https://api.imgbb.com/1/upload"

type Config struct {
	APIKey    string
	UploadURL string
	Timeout   time.Duration

	// Opcional (tests).
	Transport http.RoundTripper
}

type Client struct {
	uploadURL string
	apiKey    string
	http      *httpclient.Client
}

func NewClient(cfg Config) *Client {
	u := strings.TrimSpace(cfg.UploadURL)
	if u == "" {
		u = DefaultUploadURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		uploadURL: u,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		http:      httpclient.NewWithTransport(timeout, cfg.Transport),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.uploadURL != "" && c.apiKey != ""
}

// uploadResponse: solo lo que usamos del contrato de ImgBB.
type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
}

// UploadBase64 sube una imagen ya codificada en base64 (sin prefijo data:).
func (c *Client) UploadBase64(ctx context.Context, encoded string) (string, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", encoded)

	var out uploadResponse
	if err := c.http.PostForm(ctx, c.uploadURL, form, &out); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return "", ErrUnauthorized
			}
			return "", fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if !out.Success || strings.TrimSpace(out.Data.URL) == "" {
		return "", fmt.Errorf("%w: upload not successful (status=%d)", ErrUpstream, out.Status)
	}
	return strings.TrimSpace(out.Data.URL), nil
}
