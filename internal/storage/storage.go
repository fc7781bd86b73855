package storage

import (
	"accounts/internal/config"
	"context"
	"fmt"
	"strings"
)

const (
	// TypeLocal stores uploads on the local filesystem.
	TypeLocal = "local"
	// TypeS3 stores uploads in Amazon S3 or a compatible backend.
	TypeS3 = "s3"
	// TypeOSS stores uploads in Aliyun OSS.
	TypeOSS = "oss"
	// TypeCOS stores uploads in Tencent COS.
	TypeCOS = "cos"
	// TypeR2 stores uploads in Cloudflare R2.
	TypeR2 = "r2"
)

// Storage persists an uploaded file and returns the backend-specific key
// under which it was stored. The key preserves the original filename,
// prefixed with a timestamp to keep it unique.
type Storage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// LocalBaseDirProvider is implemented by backends that expose a local
// directory which can be served directly over HTTP.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage instantiates the configured storage backend.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
