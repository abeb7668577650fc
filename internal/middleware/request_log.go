package middleware

import (
	"log/slog"
	"net/http"

	sloghttp "github.com/samber/slog-http"
)

// RequestLogger loguea cada request (método, path, status, latencia, request id).
// /health y /metrics se omiten para no ensuciar los logs.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return sloghttp.NewWithConfig(logger, sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		Filters: []sloghttp.Filter{
			sloghttp.IgnorePath("/health", "/metrics"),
		},
	})
}
