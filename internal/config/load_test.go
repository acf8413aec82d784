package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		dirs      func(t *testing.T) []string
		env       map[string]string
		want      func(t *testing.T, cfg *Config)
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name: "Defaults only",
			dirs: func(t *testing.T) []string { return []string{t.TempDir()} },
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
				assert.Equal(t, 15*time.Second, cfg.API.Timeout)
				assert.Equal(t, RefreshModeCookie, cfg.Auth.RefreshMode)
				assert.Equal(t, "refresh_token", cfg.Auth.RefreshCookieName)
				assert.Equal(t, 20, cfg.Products.PageSize)
			},
			assertErr: assert.NoError,
		},
		{
			name: "Config file overrides defaults",
			dirs: func(t *testing.T) []string {
				return []string{writeConfig(t, "api:\n  baseURL: https://inventory.example.com/api\nauth:\n  refreshMode: body\n")}
			},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://inventory.example.com/api", cfg.API.BaseURL)
				assert.Equal(t, RefreshModeBody, cfg.Auth.RefreshMode)
				// untouched fields keep their defaults
				assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
			},
			assertErr: assert.NoError,
		},
		{
			name: "First directory with a config file wins",
			dirs: func(t *testing.T) []string {
				first := writeConfig(t, "products:\n  pageSize: 50\n")
				second := writeConfig(t, "products:\n  pageSize: 99\n")
				return []string{first, second}
			},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 50, cfg.Products.PageSize)
			},
			assertErr: assert.NoError,
		},
		{
			name: "Environment overrides file",
			dirs: func(t *testing.T) []string {
				return []string{writeConfig(t, "api:\n  baseURL: https://file.example.com/api\n")}
			},
			env: map[string]string{
				"INVCTL_API_BASEURL": "https://env.example.com/api",
				"INVCTL_API_TIMEOUT": "3s",
			},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://env.example.com/api", cfg.API.BaseURL)
				assert.Equal(t, 3*time.Second, cfg.API.Timeout)
			},
			assertErr: assert.NoError,
		},
		{
			name: "Malformed config file",
			dirs: func(t *testing.T) []string {
				return []string{writeConfig(t, "api: [not a mapping\n")}
			},
			assertErr: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(tt.dirs(t)...)
			if !tt.assertErr(t, err) || err != nil {
				return
			}
			tt.want(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		assertErr assert.ErrorAssertionFunc
	}{
		{name: "Defaults are valid", mutate: func(*Config) {}, assertErr: assert.NoError},
		{name: "Body mode is valid", mutate: func(cfg *Config) { cfg.Auth.RefreshMode = RefreshModeBody }, assertErr: assert.NoError},
		{name: "Unknown refresh mode", mutate: func(cfg *Config) { cfg.Auth.RefreshMode = "header" }, assertErr: assert.Error},
		{name: "Empty base URL", mutate: func(cfg *Config) { cfg.API.BaseURL = "" }, assertErr: assert.Error},
		{name: "Zero page size", mutate: func(cfg *Config) { cfg.Products.PageSize = 0 }, assertErr: assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(t.TempDir())
			require.NoError(t, err)
			tt.mutate(cfg)
			tt.assertErr(t, cfg.Validate())
		})
	}
}
