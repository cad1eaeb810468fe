package cli

import (
	"github.com/spf13/cobra"

	"github.com/commercedata/ecomgen/internal/datagen/ecommerce"
	"github.com/commercedata/ecomgen/internal/export"
	"github.com/commercedata/ecomgen/internal/logging"
)

var (
	genUsers    int
	genProducts int
	genOrders   int
	genEvents   int
	genOutDir   string
	genWeights  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset and write it to CSV files",
	Long: `Generate a complete dataset and write one CSV file per table to the
output directory. No database connection is required.

Example:
  ecomgen generate --seed 42 --users 1000 --products 200 --orders 5000 --events 20000`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genUsers, "users", 0, "number of users to generate")
	generateCmd.Flags().IntVar(&genProducts, "products", 0, "number of products to generate")
	generateCmd.Flags().IntVar(&genOrders, "orders", 0, "number of orders to generate")
	generateCmd.Flags().IntVar(&genEvents, "events", 0, "number of events to generate")
	generateCmd.Flags().StringVar(&genOutDir, "out-dir", "", "output directory for CSV files")
	generateCmd.Flags().StringVar(&genWeights, "weights", "",
		"YAML file overriding the built-in weight tables")
}

func applyGenerateFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("users") {
		cfg.Generate.Users = genUsers
	}
	if cmd.Flags().Changed("products") {
		cfg.Generate.Products = genProducts
	}
	if cmd.Flags().Changed("orders") {
		cfg.Generate.Orders = genOrders
	}
	if cmd.Flags().Changed("events") {
		cfg.Generate.Events = genEvents
	}
	if genOutDir != "" {
		cfg.Generate.OutDir = genOutDir
	}
	if genWeights != "" {
		cfg.Generate.WeightsFile = genWeights
	}
}

// buildGenerator constructs a generator from the active configuration,
// applying the weights file if one is configured.
func buildGenerator() (*ecommerce.Generator, error) {
	gen := ecommerce.New(cfg.Seed)
	if cfg.Generate.WeightsFile != "" {
		weights, err := ecommerce.LoadWeights(cfg.Generate.WeightsFile)
		if err != nil {
			return nil, err
		}
		gen.SetWeights(weights)
		logging.Info().Str("file", cfg.Generate.WeightsFile).Msg("Using weight overrides")
	}
	return gen, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd)
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	gen, err := buildGenerator()
	if err != nil {
		return err
	}

	logging.Info().
		Uint64("seed", cfg.Seed).
		Int("users", cfg.Generate.Users).
		Int("products", cfg.Generate.Products).
		Int("orders", cfg.Generate.Orders).
		Int("events", cfg.Generate.Events).
		Msg("Generating dataset")

	ds, err := gen.GenerateAll(ecommerce.Counts{
		Users:    cfg.Generate.Users,
		Products: cfg.Generate.Products,
		Orders:   cfg.Generate.Orders,
		Events:   cfg.Generate.Events,
	})
	if err != nil {
		return err
	}

	if err := export.WriteDataset(ds, cfg.Generate.OutDir); err != nil {
		return err
	}

	logging.Info().Str("dir", cfg.Generate.OutDir).Msg("Dataset written")
	return nil
}
