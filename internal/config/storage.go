package config

import (
	"os"
	"sync"
)

// StorageConfig describes an S3-compatible bucket host (Supabase storage, R2, MinIO).
type StorageConfig struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	CVBucket         string
	JobPostingBucket string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Endpoint:         os.Getenv("STORAGE_ENDPOINT"),
			Region:           getEnv("STORAGE_REGION", "auto"),
			AccessKey:        os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:        os.Getenv("STORAGE_SECRET_KEY"),
			CVBucket:         getEnv("STORAGE_CV_BUCKET", "cvs"),
			JobPostingBucket: getEnv("STORAGE_JOB_POSTING_BUCKET", "job-postings"),
		}
	})
	return storageConfig
}

func (c *StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}
