// Package storage provides artifact archival for baselines, flamegraphs,
// and summary JSON files, backed by either the local filesystem or
// Tencent COS.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/vgbench/runner/pkg/compression"
	"github.com/vgbench/runner/pkg/config"
)

// Storage defines the interface for artifact archival operations.
type Storage interface {
	// Upload uploads data from reader to the specified key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// UploadFile uploads a local file to the specified key.
	UploadFile(ctx context.Context, key string, localPath string) error

	// Download downloads data from the specified key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// DownloadFile downloads data from the specified key to a local file.
	DownloadFile(ctx context.Context, key string, localPath string) error

	// Delete deletes the object at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for the specified key (if applicable).
	GetURL(key string) string
}

// Type identifies a storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New creates a Storage instance based on the configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var backend Storage
	var err error

	switch Type(cfg.Type) {
	case TypeCOS:
		backend, err = NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		backend, err = NewLocalStorage(cfg.LocalPath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CompressArtifacts {
		return NewCompressingStorage(backend, compression.LevelDefault)
	}
	return backend, nil
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg config.StorageConfig) error {
	storageType := Type(cfg.Type)
	if storageType == "" {
		storageType = TypeLocal
	}

	if storageType != TypeCOS && storageType != TypeLocal {
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if storageType == TypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	return nil
}

// ArtifactKey builds the storage key for one archived artifact belonging
// to a benchmark run: "<modulePath>/<functionName>/<runID>/<name>".
func ArtifactKey(modulePath, functionName, runID, name string) string {
	return fmt.Sprintf("%s/%s/%s/%s", modulePath, functionName, runID, name)
}
