package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORAGE_BACKEND", "WORKER_CONCURRENCY", "ENRICHMENT_TIMEOUT",
		"LOCK_TTL", "ENRICHMENT_FALLBACKS", "LLM_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg, _ := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.Analysis.EnrichmentTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LockTTL)
	assert.False(t, cfg.Analysis.Fallbacks)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WORKER_CONCURRENCY", "7")
	t.Setenv("ENRICHMENT_TIMEOUT", "15s")
	t.Setenv("ENRICHMENT_FALLBACKS", "true")
	t.Setenv("STORAGE_BACKEND", "MinIO")
	t.Setenv("MINIO_USE_SSL", "1")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, _ := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Worker.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.Analysis.EnrichmentTimeout)
	assert.True(t, cfg.Analysis.Fallbacks)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")

	assert.Equal(t, 3*time.Second, getEnvAsDuration("SWEEP_INTERVAL", "3s"))
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Backend: "local"},
		Worker:  WorkerConfig{Concurrency: 1},
		Auth:    AuthConfig{JWTSecret: "secret"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate())
	cfg.Auth.JWTSecret = "secret"

	cfg.Storage.Backend = "minio"
	assert.Error(t, cfg.Validate())
	cfg.Storage.MinIO.AccessKey, cfg.Storage.MinIO.SecretKey = "a", "b"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Backend = "s3"
	assert.Error(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "n"}}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
