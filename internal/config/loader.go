package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rpattn/koreng/internal/db"
)

// EnvPrefix prefixes environment overrides, e.g. KORENG_DATABASE_HOST.
const EnvPrefix = "KORENG"

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Search   SearchConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string
	BasePath       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// SearchConfig bounds search requests.
type SearchConfig struct {
	MaxPageLength int
	ExportLimit   int
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			BasePath:       "/kore-ng",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Database: db.DefaultConfig(),
		Search: SearchConfig{
			MaxPageLength: 1000,
			ExportLimit:   10000,
		},
	}
}

// Load reads config.yaml from configPath when present and applies environment
// overrides on top of the defaults.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		slog.Info("no config.yaml found, using defaults and env vars", slog.String("path", configPath))
	} else {
		slog.Info("loaded config", slog.String("file", v.ConfigFileUsed()))
	}

	driver, err := db.ParseDialect(v.GetString("database.driver"))
	if err != nil {
		return Config{}, err
	}

	cfg.Server = ServerConfig{
		Addr:           v.GetString("server.addr"),
		BasePath:       v.GetString("server.basePath"),
		AllowedOrigins: v.GetStringSlice("server.allowedOrigins"),
		ReadTimeout:    v.GetDuration("server.readTimeout"),
		WriteTimeout:   v.GetDuration("server.writeTimeout"),
	}
	cfg.Database = db.Config{
		Driver:   driver,
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
		Path:     v.GetString("database.path"),
		Migrate:  v.GetBool("database.migrate"),
	}
	cfg.Search = SearchConfig{
		MaxPageLength: v.GetInt("search.maxPageLength"),
		ExportLimit:   v.GetInt("search.exportLimit"),
	}

	return cfg, nil
}

// Defaults are registered so AutomaticEnv can see every key.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.basePath", cfg.Server.BasePath)
	v.SetDefault("server.allowedOrigins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.readTimeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", cfg.Server.WriteTimeout)

	v.SetDefault("database.driver", string(cfg.Database.Driver))
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.dbname", cfg.Database.DBName)
	v.SetDefault("database.sslmode", cfg.Database.SSLMode)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.migrate", cfg.Database.Migrate)

	v.SetDefault("search.maxPageLength", cfg.Search.MaxPageLength)
	v.SetDefault("search.exportLimit", cfg.Search.ExportLimit)
}
