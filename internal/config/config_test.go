package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "RefArch", cfg.Storefront.SiteID)
	assert.Equal(t, "user.info", cfg.Services.UserLookup.Name)
	assert.Equal(t, "pwakit.http.service", cfg.Services.PageContent.Name)
	assert.Equal(t, ModeLive, cfg.Services.UserLookup.Mode)
	assert.Equal(t, 10000, cfg.Services.UserLookup.TimeoutMillis)
	assert.Equal(t, "services.user_lookup.base_url", cfg.Services.UserLookup.Setting)
	assert.Equal(t, "services.page_content.base_url", cfg.Services.PageContent.Setting)
	assert.Equal(t, NewsletterDriverSQLite, cfg.Newsletter.Driver)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
services:
  user_lookup:
    base_url: https://reqres.in/api/users
    timeout_ms: 2500
    auth_type: api_key
    auth_config:
      key: reqres-free-v1
      header: x-api-key
  page_content:
    base_url: https://pwa.example.com/mobify
    mode: simulate
`), 0o600))

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://reqres.in/api/users", cfg.Services.UserLookup.BaseURL)
	assert.Equal(t, 2500, cfg.Services.UserLookup.TimeoutMillis)
	assert.Equal(t, AuthTypeAPIKey, cfg.Services.UserLookup.AuthType)
	assert.Equal(t, "reqres-free-v1", cfg.Services.UserLookup.AuthConfig["key"])
	assert.True(t, cfg.Services.PageContent.Simulated())
	assert.False(t, cfg.Services.UserLookup.Simulated())
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREFRONT_SERVICES_USER_LOOKUP_BASE_URL", "https://users.example.com")
	t.Setenv("STOREFRONT_STOREFRONT_SITE_ID", "SiteGenesis")

	cfg, err := Load(newFlags(t, "--mode", "simulate", "--port", "7000"))
	require.NoError(t, err)

	assert.Equal(t, "https://users.example.com", cfg.Services.UserLookup.BaseURL)
	assert.Equal(t, "SiteGenesis", cfg.Storefront.SiteID)
	assert.Equal(t, ModeSimulate, cfg.Services.UserLookup.Mode)
	assert.Equal(t, ModeSimulate, cfg.Services.PageContent.Mode)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(newFlags(t, "--mode", "staging"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOREFRONT_MODE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Services: ServicesConfig{
				UserLookup:  ServiceConfig{Name: "user.info", Mode: ModeLive, TimeoutMillis: 1000, Setting: "services.user_lookup.base_url"},
				PageContent: ServiceConfig{Name: "pwakit.http.service", Mode: ModeSimulate, TimeoutMillis: 1000, Setting: "services.page_content.base_url"},
			},
			Newsletter: NewsletterConfig{Driver: NewsletterDriverSQLite, DSN: ":memory:"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{name: "Empty base URL is allowed", mutate: func(c *Config) { c.Services.UserLookup.BaseURL = "" }},
		{name: "Zero timeout", mutate: func(c *Config) { c.Services.UserLookup.TimeoutMillis = 0 }, wantErr: "services.user_lookup.timeout_ms"},
		{name: "Unknown driver", mutate: func(c *Config) { c.Newsletter.Driver = "mongo" }, wantErr: "unsupported newsletter driver"},
		{name: "Redis without addr", mutate: func(c *Config) { c.Newsletter.Driver = NewsletterDriverRedis }, wantErr: "STOREFRONT_NEWSLETTER_REDIS_ADDR"},
		{name: "SQLite without DSN", mutate: func(c *Config) { c.Newsletter.DSN = "" }, wantErr: "newsletter.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "STOREFRONT_SERVICES_PAGE_CONTENT_BASE_URL", EnvKey("services.page_content.base_url"))
	assert.Equal(t, "STOREFRONT_MOCK_FIXTURES", EnvKey("mock-fixtures"))
}

func TestServiceConfig_Timeout(t *testing.T) {
	assert.Equal(t, 2500*time.Millisecond, (&ServiceConfig{TimeoutMillis: 2500}).Timeout())
	assert.Equal(t, 10*time.Second, (&ServiceConfig{}).Timeout())
	assert.Equal(t, 10*time.Second, (&ServiceConfig{TimeoutMillis: -5}).Timeout())
}
