// Package config provides file-based configuration for the dashboard
// server: input paths, the transaction schema mapping, and UI defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"retail_dashboard/internal/retail"
)

// Config holds the full server configuration. Zero values are filled from
// Default before validation.
type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	TransactionsPath string `yaml:"transactions_path"`
	SegmentsPath     string `yaml:"segments_path"`

	// Schema selects a column-mapping preset: "classic"
	// (InvoiceNo/UnitPrice/CustomerID) or "modern"
	// (Invoice/Price/Customer ID). Columns, when set, overrides the
	// preset with an explicit mapping.
	Schema  string                `yaml:"schema"`
	Columns *retail.ColumnMapping `yaml:"columns"`

	DefaultCountries []string `yaml:"default_countries"`
	PreviewRows      int      `yaml:"preview_rows"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ListenAddr:       ":8081",
		TransactionsPath: "Online_Retail.csv",
		SegmentsPath:     "rfm_segments.csv",
		Schema:           "classic",
		DefaultCountries: []string{"United Kingdom"},
		PreviewRows:      100,
	}
}

// Load reads the yaml config at path, overlaying it on Default. An empty
// path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields Load cannot default its way out of.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.TransactionsPath == "" {
		return fmt.Errorf("transactions_path must not be empty")
	}
	if c.PreviewRows <= 0 {
		return fmt.Errorf("preview_rows must be positive, got %d", c.PreviewRows)
	}
	if _, err := c.Mapping(); err != nil {
		return err
	}
	return nil
}

// Mapping resolves the transaction column mapping from the explicit
// override or the named preset.
func (c Config) Mapping() (retail.ColumnMapping, error) {
	if c.Columns != nil {
		return *c.Columns, nil
	}
	switch c.Schema {
	case "classic", "":
		return retail.ClassicMapping(), nil
	case "modern":
		return retail.ModernMapping(), nil
	default:
		return retail.ColumnMapping{}, fmt.Errorf("unknown schema %q (want classic or modern)", c.Schema)
	}
}
