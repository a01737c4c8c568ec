package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "/admin", cfg.Path)
	assert.Equal(t, "web", cfg.Guard)
	assert.Equal(t, "local", cfg.Media.Disk)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxFileSize)
	assert.Equal(t, 25, cfg.Pagination.PerPage)
	assert.Equal(t, 100, cfg.Pagination.MaxPerPage)
	assert.Equal(t, "steward:", cfg.Cache.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.Cache.BadgeTTL)
	assert.Equal(t, "2006-01-02", cfg.Fields.DateFormat)
	assert.Equal(t, "UTC", cfg.Fields.Timezone)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "path without leading slash",
			mutate:  func(c *Config) { c.Path = "admin" },
			wantErr: "panel path must start with /",
		},
		{
			name:    "non-positive per_page",
			mutate:  func(c *Config) { c.Pagination.PerPage = 0 },
			wantErr: "per_page must be positive",
		},
		{
			name:    "max_per_page below per_page",
			mutate:  func(c *Config) { c.Pagination.MaxPerPage = 10 },
			wantErr: "must be >= per_page",
		},
		{
			name:    "non-positive max_file_size",
			mutate:  func(c *Config) { c.Media.MaxFileSize = 0 },
			wantErr: "max_file_size must be positive",
		},
		{
			name: "max_total_size below max_file_size",
			mutate: func(c *Config) {
				c.Media.MaxFileSize = 100
				c.Media.MaxTotalSize = 50
			},
			wantErr: "must be >= max_file_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/admin", cfg.Path)
}
