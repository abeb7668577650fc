package imgbb

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"birthday-reminders/internal/ports/images"

	"github.com/gabriel-vasile/mimetype"
)

// Uploader implementa images.Uploader sobre ImgBB.
type Uploader struct {
	client *Client
}

func NewUploader(client *Client) *Uploader {
	return &Uploader{client: client}
}

// Upload acepta base64 "pelado" o una data URL (data:image/png;base64,...).
// Antes de subir valida que el contenido sea realmente una imagen.
func (u *Uploader) Upload(ctx context.Context, payload string) (string, error) {
	if u == nil || !u.client.IsConfigured() {
		return "", images.ErrNotConfigured
	}

	raw, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	mime := mimetype.Detect(raw)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", images.ErrInvalidImage, mime.String())
	}

	url, err := u.client.UploadBase64(ctx, base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		slog.WarnContext(ctx, "imgbb upload failed", slog.Any("error", err), slog.String("mime", mime.String()), slog.Int("size", len(raw)))
		return "", err
	}
	return url, nil
}

func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	// Quitar prefijo data URL si viene
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", images.ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > images.MaxImageBytes {
		return nil, fmt.Errorf("%w: image too large", images.ErrInvalidImage)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// algunos clientes mandan base64 sin padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64", images.ErrInvalidImage)
		}
	}
	return raw, nil
}
