package objectstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
)

// Config locates the S3-compatible store holding job inputs and results.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Region        string
	UseSSL        bool
	BucketInputs  string
	BucketOutputs string
	PresignTTL    time.Duration
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("DAWRENCH_MINIO_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	presignTTL, err := env.Duration("DAWRENCH_MINIO_PRESIGN_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:      env.String("DAWRENCH_MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:     env.String("DAWRENCH_MINIO_ACCESS_KEY", "dawrench"),
		SecretKey:     env.String("DAWRENCH_MINIO_SECRET_KEY", "dawrenchminio"),
		Region:        env.String("DAWRENCH_MINIO_REGION", "us-east-1"),
		UseSSL:        useSSL,
		BucketInputs:  env.String("DAWRENCH_MINIO_BUCKET_INPUTS", "dawrench-inputs"),
		BucketOutputs: env.String("DAWRENCH_MINIO_BUCKET_OUTPUTS", "dawrench-outputs"),
		PresignTTL:    presignTTL,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.BucketInputs) == "" {
		return errors.New("inputs bucket is required")
	}
	if strings.TrimSpace(c.BucketOutputs) == "" {
		return errors.New("outputs bucket is required")
	}
	if c.PresignTTL < 0 {
		return errors.New("presign ttl must not be negative")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
