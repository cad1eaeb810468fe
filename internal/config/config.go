//-------------------------------------------------------------------------
//
// ecomgen - E-commerce Analytics Data Generator
//
// Copyright (c) 2025 - 2026, CommerceData Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for ecomgen.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for ecomgen.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Seed drives the whole generation pipeline. Same seed, same data.
	Seed uint64 `mapstructure:"seed"`

	// Generate holds configuration for data generation.
	Generate GenerateConfig `mapstructure:"generate"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`
}

// GenerateConfig holds per-table row counts and generation options.
type GenerateConfig struct {
	// Users is the number of users to generate.
	Users int `mapstructure:"users"`

	// Products is the number of products to generate.
	Products int `mapstructure:"products"`

	// Orders is the number of orders to generate.
	Orders int `mapstructure:"orders"`

	// Events is the number of behavioral events to generate.
	Events int `mapstructure:"events"`

	// OutDir is where the generate subcommand writes CSV files.
	OutDir string `mapstructure:"out_dir"`

	// WeightsFile optionally overrides the built-in categorical weight
	// tables (countries, channels, categories).
	WeightsFile string `mapstructure:"weights_file"`
}

// LoadConfig holds configuration for loading data into PostgreSQL.
type LoadConfig struct {
	// Truncate empties the target tables before loading.
	Truncate bool `mapstructure:"truncate"`

	// DropExisting drops and recreates the schema before loading.
	DropExisting bool `mapstructure:"drop_existing"`
}

// ReportConfig holds configuration for KPI reporting.
type ReportConfig struct {
	// Days is the lookback window for daily revenue.
	Days int `mapstructure:"days"`

	// TopProducts is how many products the revenue ranking returns.
	TopProducts int `mapstructure:"top_products"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Seed:     42,
		Generate: GenerateConfig{
			Users:    1000,
			Products: 200,
			Orders:   5000,
			Events:   20000,
			OutDir:   "data/generated",
		},
		Load: LoadConfig{
			Truncate: true,
		},
		Report: ReportConfig{
			Days:        7,
			TopProducts: 5,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./ecomgen.yaml
// 3. ~/.config/ecomgen/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("ecomgen")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ecomgen"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validateCounts() error {
	for _, count := range []struct {
		name string
		n    int
	}{
		{"users", c.Generate.Users},
		{"products", c.Generate.Products},
		{"orders", c.Generate.Orders},
		{"events", c.Generate.Events},
	} {
		if count.n < 0 {
			return fmt.Errorf("%s count must be non-negative, got %d", count.name, count.n)
		}
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if err := c.validateCounts(); err != nil {
		return err
	}
	if c.Generate.OutDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return c.validateCounts()
}

// ValidateConnection checks configuration for read-only DB commands.
func (c *Config) ValidateConnection() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.ValidateConnection(); err != nil {
		return err
	}
	if c.Report.Days < 1 {
		return fmt.Errorf("report days must be at least 1")
	}
	if c.Report.TopProducts < 1 {
		return fmt.Errorf("top products must be at least 1")
	}
	return nil
}
