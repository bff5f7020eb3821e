package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/database"
	"github.com/sagarc03/attachly/devstore"
	attachlyhttp "github.com/sagarc03/attachly/http"
	"github.com/sagarc03/attachly/identity"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for attachly.
type Config struct {
	Env      string                  `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig            `mapstructure:"server"`
	Database database.Config         `mapstructure:"database"`
	Identity identity.Config         `mapstructure:"identity"`
	CORS     attachlyhttp.CORSConfig `mapstructure:"cors"`
	Devstore devstore.Config         `mapstructure:"devstore"`
	Log      LogConfig               `mapstructure:"log"`
}

// ServerConfig holds gateway HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=0,max=52428800"`
	Metrics       bool  `mapstructure:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":         "database.type",
	"db-dsn":          "database.dsn",
	"port":            "server.port",
	"metrics":         "server.metrics",
	"identity":        "identity.type",
	"storage-path":    "devstore.storage",
	"devstore-port":   "devstore.port",
	"devstore-region": "devstore.region",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_upload_size", attachly.MaxUploadSize)
	v.SetDefault("server.metrics", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "attachly.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.tables.attachments", "attachments")
	v.SetDefault("database.tables.preferences", "user_preferences")

	v.SetDefault("identity.type", "jwt")
	v.SetDefault("identity.jwt.secret", "")
	v.SetDefault("identity.jwt.issuer", "")
	v.SetDefault("identity.jwt.audience", "")
	v.SetDefault("identity.oidc.issuer", "")
	v.SetDefault("identity.oidc.client_id", "")
	v.SetDefault("identity.oidc.audience", "")
	v.SetDefault("identity.oidc.jwks_url", "")

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"authorization", "x-client-info", "apikey", "content-type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("devstore.port", 9000)
	v.SetDefault("devstore.storage", "./data")
	v.SetDefault("devstore.region", "us-east-1")
	v.SetDefault("devstore.keys.file", "")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//
// Environment variables use the ATTACHLY_ prefix with dots replaced by
// underscores, e.g. ATTACHLY_IDENTITY_JWT_SECRET.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("ATTACHLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
