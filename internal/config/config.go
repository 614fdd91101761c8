package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// EnvPrefix is the prefix for every environment override
const EnvPrefix = "STOREFRONT"

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("storefront version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server       ServerConfig     `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Storefront   StorefrontConfig `mapstructure:"storefront" yaml:"storefront"`
	Services     ServicesConfig   `mapstructure:"services" yaml:"services"`
	Newsletter   NewsletterConfig `mapstructure:"newsletter" yaml:"newsletter"`
	MockFixtures string           `mapstructure:"mock_fixtures" yaml:"mock_fixtures,omitempty"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port" yaml:"port"`
	Host    string `mapstructure:"host" yaml:"host"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	Name    string `mapstructure:"name" yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level" yaml:"level"`
	Format            string `mapstructure:"format" yaml:"format"`
	Color             bool   `mapstructure:"color" yaml:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace" yaml:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path" yaml:"output_path,omitempty"`
	AppendToFile      bool   `mapstructure:"append_to_file" yaml:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console" yaml:"disable_console"`
}

// StorefrontConfig holds settings of the hosting storefront site
type StorefrontConfig struct {
	SiteID string `mapstructure:"site_id" yaml:"site_id"`
}

// ServicesConfig holds one ServiceConfig per remote integration
type ServicesConfig struct {
	UserLookup  ServiceConfig `mapstructure:"user_lookup" yaml:"user_lookup"`
	PageContent ServiceConfig `mapstructure:"page_content" yaml:"page_content"`
}

// Mode is the operating mode of a remote integration
type Mode string

const (
	ModeLive     Mode = "live"
	ModeSimulate Mode = "simulate"
)

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
)

// ServiceConfig identifies a named integration. It is built once at startup
// and shared read-only by every call made against that integration.
type ServiceConfig struct {
	Name          string            `mapstructure:"name" yaml:"name"`
	BaseURL       string            `mapstructure:"base_url" yaml:"base_url"`
	TimeoutMillis int               `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	Mode          Mode              `mapstructure:"mode" yaml:"mode"`
	AuthType      AuthType          `mapstructure:"auth_type" yaml:"auth_type,omitempty"`
	AuthConfig    map[string]string `mapstructure:"auth_config" yaml:"-"`
	Headers       map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	// Setting is the config key operators edit to change BaseURL.
	Setting string `mapstructure:"-" yaml:"-"`
}

// Timeout returns the call timeout as a duration. Unset or negative values
// fall back to the default so a call is always bounded.
func (s *ServiceConfig) Timeout() time.Duration {
	if s.TimeoutMillis <= 0 {
		return defaultTimeoutMillis * time.Millisecond
	}
	return time.Duration(s.TimeoutMillis) * time.Millisecond
}

// Simulated reports whether calls are answered by canned responses
func (s *ServiceConfig) Simulated() bool {
	return s.Mode == ModeSimulate
}

// EnvKey returns the environment variable that overrides the given setting
func EnvKey(setting string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(setting))
}

type NewsletterDriver string

const (
	NewsletterDriverSQLite NewsletterDriver = "sqlite"
	NewsletterDriverRedis  NewsletterDriver = "redis"
)

type NewsletterConfig struct {
	Driver NewsletterDriver `mapstructure:"driver" yaml:"driver"`
	DSN    string           `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Redis  RedisConfig      `mapstructure:"redis" yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"-"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

const (
	defaultTimeoutMillis = 10000
	userLookupSetting    = "services.user_lookup.base_url"
	pageContentSetting   = "services.page_content.base_url"
)

// InitFlags initializes command line flags (without parsing)
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to the config file")
	flags.String("mode", "", "Override the mode of every integration (live|simulate)")
	flags.String("mock-fixtures", "", "Path to the simulation fixtures file")
	flags.Int("port", 0, "Port to listen on")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.name", "storefront")
	v.SetDefault("server.version", version)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storefront.site_id", "RefArch")
	v.SetDefault("services.user_lookup.name", "user.info")
	v.SetDefault(userLookupSetting, "")
	v.SetDefault("services.user_lookup.timeout_ms", defaultTimeoutMillis)
	v.SetDefault("services.user_lookup.mode", string(ModeLive))
	v.SetDefault("services.user_lookup.auth_type", string(AuthTypeNone))
	v.SetDefault("services.page_content.name", "pwakit.http.service")
	v.SetDefault(pageContentSetting, "")
	v.SetDefault("services.page_content.timeout_ms", defaultTimeoutMillis)
	v.SetDefault("services.page_content.mode", string(ModeLive))
	v.SetDefault("services.page_content.auth_type", string(AuthTypeNone))
	v.SetDefault("newsletter.driver", string(NewsletterDriverSQLite))
	v.SetDefault("newsletter.dsn", "file:newsletter.db?_pragma=busy_timeout(5000)")
	v.SetDefault("newsletter.redis.addr", "")
	v.SetDefault("newsletter.redis.password", "")
	v.SetDefault("newsletter.redis.db", 0)
}

// Load reads config.yaml, environment and flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/storefront")
	}

	if err := v.ReadInConfig(); err != nil {
		// Running purely from defaults and environment is allowed
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	//Loading additionals config files
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		v.SetConfigFile("/config/config.yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if mode := v.GetString("mode"); mode != "" {
		config.Services.UserLookup.Mode = Mode(mode)
		config.Services.PageContent.Mode = Mode(mode)
	}
	if fixtures := v.GetString("mock-fixtures"); fixtures != "" {
		config.MockFixtures = fixtures
	}
	if port := v.GetInt("port"); port != 0 {
		config.Server.Port = port
	}

	config.Services.UserLookup.Setting = userLookupSetting
	config.Services.PageContent.Setting = pageContentSetting

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings that can be verified without network access.
// An empty base URL is not rejected here: it surfaces per call as a
// configuration failure so the rest of the storefront keeps serving.
func (c *Config) Validate() error {
	for _, svc := range []*ServiceConfig{&c.Services.UserLookup, &c.Services.PageContent} {
		switch svc.Mode {
		case ModeLive, ModeSimulate:
		default:
			return fmt.Errorf("invalid mode %q for %s, please adjust the config or pass --mode or %s environment variable",
				svc.Mode, svc.Name, EnvKey("mode"))
		}
		if svc.TimeoutMillis <= 0 {
			return fmt.Errorf("%s.timeout_ms must be positive, please adjust the config", strings.TrimSuffix(svc.Setting, ".base_url"))
		}
	}

	switch c.Newsletter.Driver {
	case NewsletterDriverSQLite:
		if c.Newsletter.DSN == "" {
			return fmt.Errorf("newsletter.dsn is required, please adjust the config or set %s environment variable", EnvKey("newsletter.dsn"))
		}
	case NewsletterDriverRedis:
		if c.Newsletter.Redis.Addr == "" {
			return fmt.Errorf("newsletter.redis.addr is required, please adjust the config or set %s environment variable", EnvKey("newsletter.redis.addr"))
		}
	default:
		return fmt.Errorf("unsupported newsletter driver: %s", c.Newsletter.Driver)
	}
	return nil
}
