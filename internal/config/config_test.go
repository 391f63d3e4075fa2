package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 3, cfg.PageSize)
	assert.Equal(t, 20, cfg.MaxPages)
	assert.Equal(t, 3, cfg.FreePreviewPage)
	assert.Equal(t, int64(299), cfg.PriceCents)
	assert.Equal(t, "eur", cfg.Currency)
	assert.Equal(t, "Cuento personalizado", cfg.ProductName)
	assert.Equal(t, 5*time.Second, cfg.MinGenerationDisplay)
	assert.False(t, cfg.AdminMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("ADMIN_MODE", "true")
	t.Setenv("FREE_PREVIEW_PAGE", "5")
	t.Setenv("MIN_GENERATION_DISPLAY", "0s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.True(t, cfg.AdminMode)
	assert.Equal(t, 5, cfg.FreePreviewPage)
	assert.Equal(t, time.Duration(0), cfg.MinGenerationDisplay)
}

func TestLoadRejectsBadPagination(t *testing.T) {
	t.Setenv("PAGE_SIZE", "0")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "3")
	t.Setenv("MAX_PAGES", "-1")
	_, err = config.Load()
	assert.Error(t, err)
}
