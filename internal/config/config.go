package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	SendGrid SendGridConfig `yaml:"sendgrid" mapstructure:"sendgrid"`
	CKAN     CKANConfig     `yaml:"ckan" mapstructure:"ckan"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig configures the on-disk dataset location.
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// GoogleConfig holds the Google Maps Platform API key shared by the
// geocoding, distance-matrix, and places clients.
type GoogleConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// SendGridConfig holds outbound email settings.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	FromName  string `yaml:"from_name" mapstructure:"from_name"`
}

// CKANConfig configures the open-data portal the dataset is fetched from.
type CKANConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	PackageID string `yaml:"package_id" mapstructure:"package_id"`
}

// Validate checks that the settings required by the given command mode are
// present. Modes: "serve", "fetch", "enrich".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.Google.APIKey == "" {
			missing = append(missing, "google.api_key is required")
		}
	case "fetch":
		if c.CKAN.BaseURL == "" {
			missing = append(missing, "ckan.base_url is required")
		}
		if c.CKAN.PackageID == "" {
			missing = append(missing, "ckan.package_id is required")
		}
	case "enrich":
		if c.Google.APIKey == "" {
			missing = append(missing, "google.api_key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DAYCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.dir", "data")
	v.SetDefault("sendgrid.from_email", "noreply@findmydaycare.com")
	v.SetDefault("sendgrid.from_name", "Find My Daycare")
	v.SetDefault("ckan.base_url", "https://ckan0.cf.opendata.inter.prod-toronto.ca")
	v.SetDefault("ckan.package_id", "licensed-child-care-centres")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
