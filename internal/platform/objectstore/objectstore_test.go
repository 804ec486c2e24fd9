package objectstore

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Endpoint:      "localhost:9000",
		AccessKey:     "a",
		SecretKey:     "b",
		Region:        "us-east-1",
		BucketInputs:  "inputs",
		BucketOutputs: "outputs",
		PresignTTL:    time.Minute,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	invalid := validConfig()
	invalid.Endpoint = "http://localhost:9000"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for scheme in endpoint")
	}

	invalid = validConfig()
	invalid.BucketOutputs = " "
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for missing outputs bucket")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DAWRENCH_MINIO_BUCKET_OUTPUTS", "results")
	t.Setenv("DAWRENCH_MINIO_PRESIGN_TTL", "15m")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.BucketOutputs != "results" || cfg.PresignTTL != 15*time.Minute {
		t.Fatalf("ConfigFromEnv()=%+v", cfg)
	}
}

func TestNewMinioStoreRequiresClient(t *testing.T) {
	if _, err := NewMinioStore(nil, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

// Presigning is computed locally, so no server is needed.
func TestSignURLs(t *testing.T) {
	client, err := NewMinIOClient(validConfig())
	if err != nil {
		t.Fatalf("NewMinIOClient() err=%v", err)
	}
	store, err := NewMinioStore(client, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewMinioStore() err=%v", err)
	}

	getURL, err := store.SignGet(context.Background(), "inputs", "Wrench.zip")
	if err != nil {
		t.Fatalf("SignGet() err=%v", err)
	}
	u, err := url.Parse(getURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "localhost:9000" || !strings.HasSuffix(u.Path, "/inputs/Wrench.zip") {
		t.Fatalf("unexpected signed url %s", getURL)
	}
	if u.Query().Get("X-Amz-Signature") == "" || u.Query().Get("X-Amz-Expires") != "600" {
		t.Fatalf("missing signature params in %s", getURL)
	}

	putURL, err := store.SignPut(context.Background(), "outputs", "job-1/result.zip")
	if err != nil {
		t.Fatalf("SignPut() err=%v", err)
	}
	if !strings.Contains(putURL, "/outputs/job-1/result.zip") {
		t.Fatalf("unexpected signed put url %s", putURL)
	}
}
