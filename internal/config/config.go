package config

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Logger    Logger    `envPrefix:"LOGGER_"`
	HTTP      HTTP      `envPrefix:"HTTP_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
	Identity  Identity  `envPrefix:"IDENTITY_"`
	ImgBB     ImgBB     `envPrefix:"IMGBB_"`
	Session   Session   `envPrefix:"SESSION_"`
	RateLimit RateLimit `envPrefix:"RATELIMIT_"`
}

type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

type HTTP struct {
	Address        string        `env:"ADDRESS" envDefault:":8080"`
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Storage struct {
	Driver      string `env:"DRIVER" envDefault:"file"`
	FileDir     string `env:"FILE_DIR" envDefault:"data"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

type Identity struct {
	// Vacío todo => modo dev (header X-Debug-User-ID).
	BaseURL   string        `env:"BASE_URL" envDefault:"https://identitytoolkit.googleapis.com"`
	APIKey    string        `env:"API_KEY"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
	CacheSize int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type ImgBB struct {
	APIKey    string        `env:"API_KEY"`
	UploadURL string        `env:"UPLOAD_URL" envDefault:"https://api.imgbb.com/1/upload"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type Session struct {
	Name   string   `env:"NAME" envDefault:"birthdays_session"`
	Keys   []string `env:"KEYS" envSeparator:","`
	MaxAge int      `env:"MAX_AGE" envDefault:"604800"`
	Secure bool     `env:"SECURE" envDefault:"false"`
}

type RateLimit struct {
	Interval     time.Duration `env:"INTERVAL" envDefault:"1s"`
	Burst        int           `env:"BURST" envDefault:"10"`
	CacheSize    int           `env:"CACHE_SIZE" envDefault:"1024"`
	TTL          time.Duration `env:"TTL" envDefault:"10m"`
	TrustHeaders bool          `env:"TRUST_HEADERS" envDefault:"false"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "BIRTHDAYS_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// PORT (estilo PaaS) pisa el puerto de HTTP_ADDRESS.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		host, _, splitErr := net.SplitHostPort(conf.HTTP.Address)
		if splitErr != nil {
			host = ""
		}
		conf.HTTP.Address = net.JoinHostPort(host, port)
	}

	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageFile:
	case StoragePostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return errors.New("storage driver postgres requires BIRTHDAYS_STORAGE_POSTGRES_DSN")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// DevMode: sin proveedor de identidad configurado se acepta X-Debug-User-ID.
func (c *Config) DevMode() bool {
	return strings.TrimSpace(c.Identity.APIKey) == "" && strings.TrimSpace(c.Identity.JWTSecret) == ""
}
