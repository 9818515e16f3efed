// Package config loads countymap settings from config.yaml and COUNTYMAP_*
// environment variables, and builds the global logger.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Input  InputConfig  `yaml:"input" mapstructure:"input"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Tiger  TigerConfig  `yaml:"tiger" mapstructure:"tiger"`
	Census CensusConfig `yaml:"census" mapstructure:"census"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Sites  SitesConfig  `yaml:"sites" mapstructure:"sites"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// InputConfig names the shape and population sources for a build.
type InputConfig struct {
	Shapes           string `yaml:"shapes" mapstructure:"shapes"`
	Population       string `yaml:"population" mapstructure:"population"`
	IDColumn         string `yaml:"id_column" mapstructure:"id_column"`
	PopulationColumn string `yaml:"population_column" mapstructure:"population_column"`
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows         int    `yaml:"skip_rows" mapstructure:"skip_rows"` // title rows above the header
}

// OutputConfig configures the derived dataset file.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MapConfig configures the projection canvas and symbol sizing.
type MapConfig struct {
	Width         int     `yaml:"width" mapstructure:"width"`
	Height        int     `yaml:"height" mapstructure:"height"`
	Scale         float64 `yaml:"scale" mapstructure:"scale"`
	SymbolDivisor float64 `yaml:"symbol_divisor" mapstructure:"symbol_divisor"`
}

// TigerConfig configures TIGER/Line downloads.
type TigerConfig struct {
	Year    int    `yaml:"year" mapstructure:"year"`
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// CensusConfig configures Census Data API population downloads.
type CensusConfig struct {
	Dataset  string `yaml:"dataset" mapstructure:"dataset"`
	Variable string `yaml:"variable" mapstructure:"variable"`
	Key      string `yaml:"api_key" mapstructure:"api_key"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxToleranceKM float64  `yaml:"max_tolerance_km" mapstructure:"max_tolerance_km"`
}

// SitesConfig configures the best-location search.
type SitesConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	ChunkSize   int `yaml:"chunk_size" mapstructure:"chunk_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from path, or ./config.yaml when path is empty,
// then overlays COUNTYMAP_* environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COUNTYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// An explicit path must exist; ./config.yaml is optional.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.shapes", "data/counties.geojson")
	v.SetDefault("input.population", "data/county_populations.tsv")
	v.SetDefault("input.id_column", "id")
	v.SetDefault("input.population_column", "Total population")
	v.SetDefault("output.path", "data/county_centroids.json")
	v.SetDefault("output.format", "")
	v.SetDefault("map.width", 975)
	v.SetDefault("map.height", 610)
	v.SetDefault("map.scale", 1300)
	v.SetDefault("map.symbol_divisor", 75)
	v.SetDefault("tiger.year", 2024)
	v.SetDefault("tiger.temp_dir", "/tmp/countymap")
	v.SetDefault("census.dataset", "https://api.census.gov/data/2020/dec/pl")
	v.SetDefault("census.variable", "P1_001N")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "countymap.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_tolerance_km", 100)
	v.SetDefault("sites.concurrency", 0)
	v.SetDefault("sites.chunk_size", 100000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings a command mode depends on and reports every
// problem at once. Modes: build, map, store, serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, "map.width and map.height must be > 0")
	}
	if c.Map.Scale <= 0 {
		errs = append(errs, "map.scale must be > 0")
	}
	if c.Map.SymbolDivisor <= 0 {
		errs = append(errs, "map.symbol_divisor must be > 0")
	}
	switch c.Output.Format {
	case "", "json", "csv":
	default:
		errs = append(errs, fmt.Sprintf("output.format %q must be json or csv", c.Output.Format))
	}

	switch mode {
	case "build":
		if c.Input.Shapes == "" {
			errs = append(errs, "input.shapes is required")
		}
		if c.Input.Population == "" {
			errs = append(errs, "input.population is required")
		}
		if c.Input.SkipRows < 0 {
			errs = append(errs, "input.skip_rows must be >= 0")
		}
	case "map":
	case "store":
		errs = append(errs, c.validateStore()...)
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be postgres or sqlite", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// Write dumps cfg as YAML to path, e.g. to seed a config.yaml.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write file")
	}
	return nil
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
