package setup

import (
	"context"
	"log/slog"
	"strings"

	"birthday-reminders/internal/adapters/auth/cached"
	"birthday-reminders/internal/adapters/auth/identitytoolkit"
	"birthday-reminders/internal/adapters/auth/jwtlocal"
	"birthday-reminders/internal/config"
	"birthday-reminders/internal/ports/auth"
)

// NewVerifierFromConfig devuelve nil en modo dev (sin proveedor configurado).
func NewVerifierFromConfig(ctx context.Context, conf *config.Config) auth.AuthVerifier {
	var verifier auth.AuthVerifier

	switch {
	case strings.TrimSpace(conf.Identity.JWTSecret) != "":
		verifier = jwtlocal.NewVerifier(conf.Identity.JWTSecret, conf.Identity.JWTIssuer)
	case strings.TrimSpace(conf.Identity.APIKey) != "":
		verifier = identitytoolkit.NewVerifier(identitytoolkit.NewClient(identitytoolkit.Config{
			BaseURL: conf.Identity.BaseURL,
			APIKey:  conf.Identity.APIKey,
			Timeout: conf.Identity.Timeout,
		}))
	default:
		slog.WarnContext(ctx, "no identity provider configured, accepting X-Debug-User-ID header (dev mode)")
		return nil
	}

	if conf.Identity.CacheSize > 0 && conf.Identity.CacheTTL > 0 {
		return cached.NewVerifier(verifier, conf.Identity.CacheSize, conf.Identity.CacheTTL)
	}
	return verifier
}
