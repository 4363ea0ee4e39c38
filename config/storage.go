package config

import (
	"fmt"

	"github.com/pothole-patrol/api-go/backend"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewStorage(cfg *Config) (backend.ObjectStorage, error) {
	switch cfg.StorageDriver {
	case "r2":
		return backend.NewR2Storage(backend.R2Options{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicURL:       cfg.R2.PublicURL,
			Region:          cfg.R2.Region,
			Endpoint:        cfg.R2.Endpoint,
		}), nil
	case "cloudinary":
		return backend.NewCloudinaryStorage(cfg.CloudinaryURL)
	case "memory":
		return backend.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

// NewBackend builds the backend handle described by cfg. The returned DB is
// nil for the memory driver.
func NewBackend(cfg *Config, log *zap.Logger) (*backend.Backend, *gorm.DB, error) {
	storage, err := NewStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.BackendDriver == "memory" {
		log.Warn("using in-memory backend; data is lost on restart")
		b := backend.NewMemoryBackend(backend.NewMemory())
		b.Storage = storage
		return b, nil, nil
	}

	db, err := ConnectDatabase(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return backend.NewGormBackend(db, storage), db, nil
}
