package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Warehouse.Driver)
	assert.Equal(t, "customer360.db", cfg.Warehouse.SnapshotPath)
	assert.Equal(t, int32(10), cfg.Warehouse.Pool.MaxConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 50, cfg.Search.PageSize)
	assert.Equal(t, 2, cfg.Search.MinNameChars)
	assert.Equal(t, 60, cfg.Search.FilterCacheTTLMins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CUSTOMER360_WAREHOUSE_DRIVER", "sqlite")
	t.Setenv("CUSTOMER360_SEARCH_PAGE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Warehouse.Driver)
	assert.Equal(t, 25, cfg.Search.PageSize)
}

func TestFilterCacheTTL(t *testing.T) {
	s := SearchConfig{FilterCacheTTLMins: 90}
	assert.Equal(t, 90*time.Minute, s.FilterCacheTTL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "postgres with url",
			cfg:  Config{Warehouse: WarehouseConfig{Driver: "postgres", DatabaseURL: "postgres://x"}},
		},
		{
			name:    "postgres without url",
			cfg:     Config{Warehouse: WarehouseConfig{Driver: "postgres"}},
			wantErr: "database_url",
		},
		{
			name: "sqlite with path",
			cfg:  Config{Warehouse: WarehouseConfig{Driver: "sqlite", SnapshotPath: "snap.db"}},
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Warehouse: WarehouseConfig{Driver: "sqlite"}},
			wantErr: "snapshot_path",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Warehouse: WarehouseConfig{Driver: "oracle"}},
			wantErr: "unknown warehouse driver",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
