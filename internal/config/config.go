// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"
)

type Config struct {
	Logger   Logger   `yaml:"logger"`
	API      API      `yaml:"api"`
	Auth     Auth     `yaml:"auth"`
	Cache    Cache    `yaml:"cache"`
	Products Products `yaml:"products"`
}

type Logger struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"`
}

type API struct {
	BaseURL string        `yaml:"baseURL" default:"http://localhost:8000/api"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// RefreshMode selects how the refresh credential travels to the backend.
// One mode per deployment; the two are never mixed per request.
type RefreshMode string

const (
	// RefreshModeCookie persists the value of the backend's refresh
	// cookie and presents it only to the refresh endpoint. Preferred.
	RefreshModeCookie RefreshMode = "cookie"
	// RefreshModeBody persists the refresh token next to the access token
	// and sends it explicitly on refresh. Legacy deployments only.
	RefreshModeBody RefreshMode = "body"
)

type Auth struct {
	RefreshMode RefreshMode `yaml:"refreshMode" default:"cookie"`

	// RefreshCookieName is the cookie carrying the refresh token in
	// cookie mode. Must match the backend's Set-Cookie name.
	RefreshCookieName string `yaml:"refreshCookieName" default:"refresh_token"`

	// CredentialFile overrides where the credential is persisted.
	// Empty means $HOME/.invctl/credentials.json.
	CredentialFile string `yaml:"credentialFile"`

	// RefreshWindow is how close to expiry the access token may get
	// before `invctl refresh` renews it.
	RefreshWindow time.Duration `yaml:"refreshWindow" default:"5m"`
}

type Cache struct {
	TTL     time.Duration `yaml:"ttl" default:"30s"`
	Cleanup time.Duration `yaml:"cleanup" default:"5m"`
}

type Products struct {
	PageSize int `yaml:"pageSize" default:"20"`
}
