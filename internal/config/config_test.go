package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "id", cfg.Input.IDColumn)
	assert.Equal(t, "Total population", cfg.Input.PopulationColumn)
	assert.Equal(t, "data/county_centroids.json", cfg.Output.Path)
	assert.Equal(t, 975, cfg.Map.Width)
	assert.Equal(t, 610, cfg.Map.Height)
	assert.InDelta(t, 1300, cfg.Map.Scale, 0.001)
	assert.InDelta(t, 75, cfg.Map.SymbolDivisor, 0.001)
	assert.Equal(t, 2024, cfg.Tiger.Year)
	assert.Equal(t, "P1_001N", cfg.Census.Variable)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 100000, cfg.Sites.ChunkSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.NoError(t, cfg.Validate("build"))
	assert.NoError(t, cfg.Validate("store"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
input:
  shapes: tl_2024_us_county.zip
  population: pop.xlsx
  sheet: Data
store:
  driver: postgres
  database_url: postgres://localhost/countymap
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tl_2024_us_county.zip", cfg.Input.Shapes)
	assert.Equal(t, "Data", cfg.Input.Sheet)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 975, cfg.Map.Width)
	assert.Equal(t, "id", cfg.Input.IDColumn)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("COUNTYMAP_STORE_DRIVER", "postgres")
	t.Setenv("COUNTYMAP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("COUNTYMAP_SERVER_PORT", "3000")
	t.Setenv("COUNTYMAP_MAP_SCALE", "1000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 1000, cfg.Map.Scale, 0.001)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("map: [unclosed"), 0644))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadExplicitPath(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "kansas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  skip_rows: 2\nmap:\n  width: 500\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Input.SkipRows)
	assert.Equal(t, 500, cfg.Map.Width)
	assert.Equal(t, 610, cfg.Map.Height)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	chdirTemp(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Input.Shapes = "counties.geojson"
	cfg.Input.Population = "pop.tsv"
	cfg.Map = MapConfig{Width: 975, Height: 610, Scale: 1300, SymbolDivisor: 75}
	cfg.Store = StoreConfig{Driver: "sqlite", DatabaseURL: "countymap.db"}
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{"build ok", "build", func(*Config) {}, nil},
		{"map ok", "map", func(*Config) {}, nil},
		{"build missing inputs", "build", func(c *Config) { c.Input = InputConfig{} },
			[]string{"input.shapes is required", "input.population is required"}},
		{"negative skip rows", "build", func(c *Config) { c.Input.SkipRows = -1 },
			[]string{"input.skip_rows must be >= 0"}},
		{"zero dimensions", "map", func(c *Config) { c.Map.Width = 0 },
			[]string{"map.width and map.height must be > 0"}},
		{"negative scale and divisor", "map", func(c *Config) { c.Map.Scale = -1; c.Map.SymbolDivisor = 0 },
			[]string{"map.scale must be > 0", "map.symbol_divisor must be > 0"}},
		{"bad output format", "map", func(c *Config) { c.Output.Format = "xml" },
			[]string{"output.format"}},
		{"store driver", "store", func(c *Config) { c.Store.Driver = "mysql" },
			[]string{"store.driver \"mysql\""}},
		{"store url", "store", func(c *Config) { c.Store.DatabaseURL = "" },
			[]string{"store.database_url is required"}},
		{"serve port", "serve", func(c *Config) { c.Server.Port = 0 },
			[]string{"server.port must be > 0"}},
		{"unknown mode", "unknown", func(*Config) {}, []string{"unknown mode"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	dir := chdirTemp(t)

	cfg := validDefaults()
	cfg.Server.AllowedOrigins = []string{"https://maps.example.com"}
	require.NoError(t, Write(filepath.Join(dir, "config.yaml"), cfg))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "counties.geojson", loaded.Input.Shapes)
	assert.Equal(t, []string{"https://maps.example.com"}, loaded.Server.AllowedOrigins)
	assert.InDelta(t, 75, loaded.Map.SymbolDivisor, 0.001)
}
