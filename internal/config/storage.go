package config

import (
	"os"
	"sync"
)

// StorageConfig describes the S3-compatible bucket (Cloudflare R2 by default)
// used for resumes and interview recordings. Storage is disabled when Bucket is empty.
type StorageConfig struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			AccountID: os.Getenv("R2_ACCOUNT_ID"),
			Bucket:    os.Getenv("R2_BUCKET"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
			Endpoint:  os.Getenv("R2_ENDPOINT"),
		}
	})
	return storageConfig
}

func (c *StorageConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}
