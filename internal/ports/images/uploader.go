package images

import (
	"context"
	"errors"
)

// MaxImageBytes es el tamaño máximo decodificado que aceptamos (ImgBB admite 32MB).
const MaxImageBytes = 32 << 20

var (
	// ErrInvalidImage: el payload no es base64 válido o no es una imagen.
	ErrInvalidImage  = errors.New("invalid image")
	ErrNotConfigured = errors.New("image uploader not configured")
)

// Uploader sube una imagen (base64 o data URL) y devuelve su URL pública.
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}
