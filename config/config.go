package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"3000"`
	BackendDriver string        `env:"BACKEND_DRIVER" envDefault:"postgres"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	JWTSecret     string        `env:"JWT_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir     string        `env:"STATIC_DIR" envDefault:"dist"`
	DevServerURL  string        `env:"DEV_SERVER_URL"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:","`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"r2"`
	CloudinaryURL string `env:"CLOUDINARY_URL"`
	R2            R2Config

	Google GoogleEnv
}

type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"CLOUDFLARE_SECRET_ACCESS_KEY"`
	BucketName      string `env:"CLOUDFLARE_BUCKET_NAME"`
	PublicURL       string `env:"CLOUDFLARE_PUBLIC_URL"`
	Endpoint        string `env:"CLOUDFLARE_ENDPOINT"`
	Region          string `env:"CLOUDFLARE_REGION" envDefault:"auto"`
}

type GoogleEnv struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

// Load reads an optional .env file and parses the environment into a
// validated Config.
func Load() (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.BackendDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND_DRIVER %q", c.BackendDriver))
	}
	switch c.StorageDriver {
	case "r2":
		if c.R2.BucketName == "" || c.R2.PublicURL == "" {
			errs = append(errs, errors.New("CLOUDFLARE_BUCKET_NAME and CLOUDFLARE_PUBLIC_URL are required for r2 storage"))
		}
	case "cloudinary":
		if c.CloudinaryURL == "" {
			errs = append(errs, errors.New("CLOUDINARY_URL is required for cloudinary storage"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("CORS_ORIGINS entry %q must be * or start with http:// or https://", origin))
		}
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}
