package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commercedata/ecomgen/internal/db"
	"github.com/commercedata/ecomgen/internal/quality"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run data quality checks against a loaded database",
	Long: `Run the full battery of read-only data quality checks against a
previously loaded database: null checks, value ranges, referential
integrity, order-total consistency, purchase-event correspondence, and
freshness.

Example:
  ecomgen verify --connection "postgres://..."`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateConnection(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	checker := quality.New(pool)
	results, err := checker.RunAll(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		target := r.Table
		if r.Column != "" {
			target = r.Table + "." + r.Column
		}
		cmd.Printf("%-7s %-22s %-28s %s\n", r.Status, r.Check, target, r.Message)
		if r.Status == quality.StatusFailed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d quality checks failed", failed)
	}
	return nil
}
