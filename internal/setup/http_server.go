package setup

import (
	"context"
	"log/slog"
	"net/http"

	"birthday-reminders/internal/adapters/images/imgbb"
	"birthday-reminders/internal/config"
	"birthday-reminders/internal/middleware"
	"birthday-reminders/internal/router"

	"github.com/pkg/errors"
)

// NewHTTPServerFromConfig arma el server completo. La func devuelta libera el storage.
func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	repos, err := NewReposFromConfig(ctx, conf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not configure storage from config")
	}

	sessions, err := NewSessionManagerFromConfig(conf)
	if err != nil {
		_ = repos.Close()
		return nil, nil, errors.Wrap(err, "could not configure session store from config")
	}

	uploader := imgbb.NewUploader(imgbb.NewClient(imgbb.Config{
		APIKey:    conf.ImgBB.APIKey,
		UploadURL: conf.ImgBB.UploadURL,
		Timeout:   conf.ImgBB.Timeout,
	}))
	if conf.ImgBB.APIKey == "" {
		slog.WarnContext(ctx, "imgbb api key not configured, image uploads will fail")
	}

	handler := router.NewRouter(router.Options{
		AuthVerifier:   NewVerifierFromConfig(ctx, conf),
		BirthdayRepo:   repos.Birthdays,
		UserRepo:       repos.Users,
		Uploader:       uploader,
		Sessions:       sessions,
		Logger:         logger,
		AllowedOrigins: conf.HTTP.AllowedOrigins,
		RateLimit: middleware.RateLimitOptions{
			TrustHeaders: conf.RateLimit.TrustHeaders,
			Interval:     conf.RateLimit.Interval,
			Burst:        conf.RateLimit.Burst,
			CacheSize:    conf.RateLimit.CacheSize,
			TTL:          conf.RateLimit.TTL,
		},
	})

	server := &http.Server{
		Addr:         conf.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  conf.HTTP.ReadTimeout,
		WriteTimeout: conf.HTTP.WriteTimeout,
	}

	return server, repos.Close, nil
}
