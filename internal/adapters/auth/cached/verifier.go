package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"birthday-reminders/internal/ports/auth"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Verifier cachea verificaciones exitosas para no llamar al proveedor en cada request.
// Los errores no se cachean. La clave es el hash del token, nunca el token en claro.
type Verifier struct {
	next  auth.AuthVerifier
	cache *expirable.LRU[string, auth.Claims]
}

func NewVerifier(next auth.AuthVerifier, size int, ttl time.Duration) *Verifier {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Verifier{
		next:  next,
		cache: expirable.NewLRU[string, auth.Claims](size, nil, ttl),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	key := hashToken(token)
	if claims, ok := v.cache.Get(key); ok {
		return claims, nil
	}

	claims, err := v.next.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	v.cache.Add(key, claims)
	return claims, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
