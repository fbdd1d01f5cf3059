package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "PAGE_SIZE", "JWT_TTL", "MEDIA_BACKEND", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "fs", cfg.Media.Backend)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PAGE_SIZE", "6")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("MEDIA_BACKEND", "gridfs")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ENV", "production")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "gridfs", cfg.Media.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PAGE_SIZE", "-3")
	t.Setenv("JWT_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
}
