package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Company  CompanyConfig   `toml:"company"`
	Format   FormatConfig    `toml:"format"`
	Database DatabaseConfig  `toml:"database"`
	Render   RenderConfig    `toml:"render"`
	Export   ExportConfig    `toml:"export"`
	Server   ServerConfig    `toml:"server"`
	Products []ProductConfig `toml:"products"`
}

// CompanyConfig holds the label prefilled into every generation request.
type CompanyConfig struct {
	Name string `toml:"name"`
}

// FormatConfig describes how generated codes are assembled.
//
// Mode is one of "full", "minimal" or "custom"; Fields is only read for "custom".
type FormatConfig struct {
	Mode      string   `toml:"mode"`
	Fields    []string `toml:"fields"`
	Delimiter string   `toml:"delimiter"`
	PadWidth  int      `toml:"pad_width"`
}

// ProductConfig is one entry of the product catalog.
type ProductConfig struct {
	Name string `toml:"name"`
	Code string `toml:"code"`
}

// DatabaseConfig contains counter store settings.
//
// Driver is one of "sqlite", "pebble" or "memory".
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RenderConfig contains barcode image settings.
type RenderConfig struct {
	Symbology    string `toml:"symbology"`
	ModuleWidth  int    `toml:"module_width"`
	Height       int    `toml:"height"`
	Margin       int    `toml:"margin"`
	Background   string `toml:"background"`
	Foreground   string `toml:"foreground"`
	DisplayValue bool   `toml:"display_value"`
	FullASCII    bool   `toml:"full_ascii"`
	Workers      int    `toml:"workers"`
}

// ExportConfig contains PDF layout settings. Lengths are in millimetres.
type ExportConfig struct {
	Filename    string  `toml:"filename"`
	PageSize    string  `toml:"page_size"`
	Orientation string  `toml:"orientation"`
	Margin      float64 `toml:"margin"`
	ItemHeight  float64 `toml:"item_height"`
	Gap         float64 `toml:"gap"`
	Columns     int     `toml:"columns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Sections missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.fillDefaults(DefaultConfig())
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Format.Mode {
	case "full", "minimal":
	case "custom":
		if len(c.Format.Fields) == 0 {
			return fmt.Errorf("%w: format mode custom requires fields", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown format mode %q", ErrInvalidConfig, c.Format.Mode)
	}

	if c.Format.PadWidth < 1 {
		return fmt.Errorf("%w: pad_width must be at least 1", ErrInvalidConfig)
	}

	switch c.Database.Driver {
	case "sqlite", "pebble", "memory":
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	seen := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			return fmt.Errorf("%w: product %q has no code", ErrInvalidConfig, p.Name)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate product code %q", ErrInvalidConfig, code)
		}
		seen[code] = true
	}

	return nil
}

// ListenAddr joins the server host and port.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// fillDefaults copies every zero-valued setting from d.
//
// Booleans cannot be told apart from an explicit false, so display_value is
// only defaulted when the whole render section is absent.
func (c *Config) fillDefaults(d *Config) {
	if c.Company.Name == "" {
		c.Company.Name = d.Company.Name
	}

	if c.Format.Mode == "" {
		c.Format.Mode = d.Format.Mode
	}
	if c.Format.Delimiter == "" {
		c.Format.Delimiter = d.Format.Delimiter
	}
	if c.Format.PadWidth == 0 {
		c.Format.PadWidth = d.Format.PadWidth
	}

	if len(c.Products) == 0 {
		c.Products = append([]ProductConfig(nil), d.Products...)
	}

	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = d.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = d.Database.MaxIdleConns
	}

	if c.Render == (RenderConfig{}) {
		c.Render = d.Render
	}
	if c.Render.Symbology == "" {
		c.Render.Symbology = d.Render.Symbology
	}
	if c.Render.ModuleWidth == 0 {
		c.Render.ModuleWidth = d.Render.ModuleWidth
	}
	if c.Render.Height == 0 {
		c.Render.Height = d.Render.Height
	}
	if c.Render.Margin == 0 {
		c.Render.Margin = d.Render.Margin
	}
	if c.Render.Background == "" {
		c.Render.Background = d.Render.Background
	}
	if c.Render.Foreground == "" {
		c.Render.Foreground = d.Render.Foreground
	}
	if c.Render.Workers == 0 {
		c.Render.Workers = d.Render.Workers
	}

	if c.Export.Filename == "" {
		c.Export.Filename = d.Export.Filename
	}
	if c.Export.PageSize == "" {
		c.Export.PageSize = d.Export.PageSize
	}
	if c.Export.Orientation == "" {
		c.Export.Orientation = d.Export.Orientation
	}
	if c.Export.Margin == 0 {
		c.Export.Margin = d.Export.Margin
	}
	if c.Export.ItemHeight == 0 {
		c.Export.ItemHeight = d.Export.ItemHeight
	}
	if c.Export.Gap == 0 {
		c.Export.Gap = d.Export.Gap
	}
	if c.Export.Columns == 0 {
		c.Export.Columns = d.Export.Columns
	}

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = d.Server.RateLimit
	}
}
