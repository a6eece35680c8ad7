package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Company.Name != "Abc Company" {
			t.Errorf("expected company Abc Company, got %s", config.Company.Name)
		}

		if config.Format.Mode != "full" || config.Format.Delimiter != "-" || config.Format.PadWidth != 2 {
			t.Errorf("unexpected format defaults: %+v", config.Format)
		}

		if config.Database.Driver != "sqlite" || config.Database.Path != "./barcodegen.db" {
			t.Errorf("unexpected database defaults: %+v", config.Database)
		}

		if len(config.Products) != 3 {
			t.Fatalf("expected 3 products, got %d", len(config.Products))
		}
		if config.Products[0].Code != "P001" || config.Products[2].Name != "Product 3" {
			t.Errorf("unexpected products: %+v", config.Products)
		}

		if config.Render.Symbology != "CODE39" || config.Render.Height != 30 || !config.Render.DisplayValue {
			t.Errorf("unexpected render defaults: %+v", config.Render)
		}

		if config.Export.Filename != "barcodes.pdf" || config.Export.Columns != 1 {
			t.Errorf("unexpected export defaults: %+v", config.Export)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[company]
name = "Widgets Ltd"

[format]
mode = "minimal"
pad_width = 4

[database]
driver = "pebble"
path = "/tmp/counters"

[server]
port = 8080

[[products]]
name = "Gadget"
code = "G100"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Company.Name != "Widgets Ltd" {
			t.Errorf("expected company Widgets Ltd, got %s", config.Company.Name)
		}
		if config.Format.Mode != "minimal" || config.Format.PadWidth != 4 {
			t.Errorf("unexpected format: %+v", config.Format)
		}
		if config.Format.Delimiter != "-" {
			t.Errorf("expected default delimiter, got %q", config.Format.Delimiter)
		}
		if config.Database.Driver != "pebble" {
			t.Errorf("expected pebble driver, got %s", config.Database.Driver)
		}
		if len(config.Products) != 1 || config.Products[0].Code != "G100" {
			t.Errorf("expected only G100 product, got %+v", config.Products)
		}
		if config.Server.Port != 8080 || config.Server.Host != "127.0.0.1" {
			t.Errorf("unexpected server config: %+v", config.Server)
		}
		if config.Render.Symbology != "CODE39" || !config.Render.DisplayValue {
			t.Errorf("missing render section should take defaults: %+v", config.Render)
		}
		if config.ListenAddr() != "127.0.0.1:8080" {
			t.Errorf("unexpected listen addr %s", config.ListenAddr())
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "unknown mode", mutate: func(c *Config) { c.Format.Mode = "fancy" }},
			{name: "custom without fields", mutate: func(c *Config) { c.Format.Mode = "custom"; c.Format.Fields = nil }},
			{name: "zero pad width", mutate: func(c *Config) { c.Format.PadWidth = 0 }},
			{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mongo" }},
			{name: "empty product code", mutate: func(c *Config) { c.Products[0].Code = " " }},
			{name: "duplicate product code", mutate: func(c *Config) { c.Products[1].Code = "P001" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)

				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
