package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

const (
	configFileName = "config.yaml"
	envPrefix      = "INVCTL_"
)

// Load builds the configuration from defaults, the first config.yaml found
// in the given directories, and INVCTL_* environment overrides, in that
// order of precedence (later wins). A missing config file is not an error;
// the defaults plus environment are a complete configuration.
func Load(dirs ...string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	for _, dir := range dirs {
		path := filepath.Join(os.ExpandEnv(dir), configFileName)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		break
	}

	if err := applyEnv(cfg, os.Environ()); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays INVCTL_<SECTION>_<FIELD> variables onto cfg, e.g.
// INVCTL_API_BASEURL or INVCTL_AUTH_REFRESHMODE. Field matching is
// case-insensitive as provided by mapstructure.
func applyEnv(cfg *Config, environ []string) error {
	overlay := map[string]any{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		section, field, ok := strings.Cut(strings.TrimPrefix(key, envPrefix), "_")
		if !ok {
			continue
		}
		sub, ok := overlay[strings.ToLower(section)].(map[string]any)
		if !ok {
			sub = map[string]any{}
			overlay[strings.ToLower(section)] = sub
		}
		sub[strings.ToLower(field)] = value
	}
	if len(overlay) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}

	return dec.Decode(overlay)
}

// CredentialPath resolves where the credential file lives, creating the
// parent directory on first use.
func (a Auth) CredentialPath() (string, error) {
	path := a.CredentialFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".invctl", "credentials.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating credential directory: %w", err)
	}
	return path, nil
}

// Validate rejects configurations the rest of the stack cannot honour.
func (c *Config) Validate() error {
	switch c.Auth.RefreshMode {
	case RefreshModeCookie, RefreshModeBody:
	default:
		return fmt.Errorf("auth.refreshMode must be %q or %q, got %q",
			RefreshModeCookie, RefreshModeBody, c.Auth.RefreshMode)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.baseURL must not be empty")
	}
	if c.Products.PageSize <= 0 {
		return errors.New("products.pageSize must be positive")
	}
	return nil
}
