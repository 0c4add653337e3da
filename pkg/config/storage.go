package config

import "fmt"

const (
	StorageBackendLocal = "local"
	StorageBackendMinio = "minio"
)

// StorageConfig configures where product assets are kept. The local backend
// writes to two directory roots; the minio backend uses two buckets.
type StorageConfig struct {
	Backend      string `koanf:"backend"`
	PrivateDir   string `koanf:"privateDir"`
	PublicDir    string `koanf:"publicDir"`
	PublicPrefix string `koanf:"publicPrefix"`
	Minio        struct {
		Endpoint      string `koanf:"endpoint"`
		AccessKey     string `koanf:"accessKey"`
		SecretKey     string `koanf:"secretKey"`
		UseSSL        bool   `koanf:"useSSL"`
		PrivateBucket string `koanf:"privateBucket"`
		PublicBucket  string `koanf:"publicBucket"`
	} `koanf:"minio"`
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendLocal:
		if c.PrivateDir == "" {
			return fmt.Errorf("storage private directory is not configured")
		}
		if c.PublicDir == "" {
			return fmt.Errorf("storage public directory is not configured")
		}
	case StorageBackendMinio:
		if c.Minio.Endpoint == "" {
			return fmt.Errorf("minio endpoint is not configured")
		}
		if c.Minio.PrivateBucket == "" || c.Minio.PublicBucket == "" {
			return fmt.Errorf("minio buckets are not configured")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	if c.PublicPrefix == "" {
		return fmt.Errorf("storage public prefix is not configured")
	}
	return nil
}
