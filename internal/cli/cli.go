//-------------------------------------------------------------------------
//
// ecomgen - E-commerce Analytics Data Generator
//
// Copyright (c) 2025 - 2026, CommerceData Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for ecomgen.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/commercedata/ecomgen/internal/config"
	"github.com/commercedata/ecomgen/internal/logging"
	"github.com/commercedata/ecomgen/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	seed       uint64
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "ecomgen",
		Short: "Synthetic e-commerce dataset generator and PostgreSQL loader",
		Long: `ecomgen synthesizes a self-consistent e-commerce dataset (users,
products, orders, order items, behavioral events) from a single seed and
loads it into PostgreSQL for analytics demos.

All foreign keys are valid by construction, order totals are derived from
their line items, and purchase events mirror real orders, so the loaded
schema always passes referential-integrity checks. The same seed produces
the same dataset on every run.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./ecomgen.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0,
		"random seed for data generation (default: 42)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(reportCmd)
}

func initConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
