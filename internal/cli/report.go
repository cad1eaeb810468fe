// ecomgen - E-commerce Analytics Data Generator
//
// Copyright (c) 2025 - 2026, CommerceData Labs
//
// This software is released under The PostgreSQL License

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commercedata/ecomgen/internal/db"
	"github.com/commercedata/ecomgen/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print KPI summaries from a loaded database",
	Long: `Print KPI summaries computed from a previously loaded database:
daily revenue for a recent window, the top products by revenue, and
aggregate customer metrics.

Example:
  ecomgen report --connection "postgres://..." --days 14 --top 10`,
	RunE: runReport,
}

var (
	reportDays int
	reportTop  int
)

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 0,
		"number of days of daily revenue to report")
	reportCmd.Flags().IntVar(&reportTop, "top", 0,
		"number of top products to report")
}

func runReport(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("days") {
		cfg.Report.Days = reportDays
	}
	if cmd.Flags().Changed("top") {
		cfg.Report.TopProducts = reportTop
	}

	if err := cfg.ValidateConnection(); err != nil {
		return err
	}
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	reporter := report.New(pool)

	daily, err := reporter.GetDailyRevenue(ctx, cfg.Report.Days)
	if err != nil {
		return err
	}
	cmd.Printf("Daily revenue (last %d days):\n", cfg.Report.Days)
	if len(daily) == 0 {
		cmd.Println("  no completed orders in window")
	}
	for _, d := range daily {
		cmd.Printf("  %s  orders=%-6d revenue=%-12.2f avg=%.2f\n",
			d.Day.Format("2006-01-02"), d.Orders, d.Revenue, d.AvgOrderValue)
	}

	top, err := reporter.GetTopProducts(ctx, cfg.Report.TopProducts)
	if err != nil {
		return err
	}
	cmd.Printf("\nTop %d products by revenue:\n", cfg.Report.TopProducts)
	for i, p := range top {
		cmd.Printf("  %2d. %-40s %-14s units=%-6d revenue=%.2f\n",
			i+1, p.Name, p.Category, p.UnitsSold, p.Revenue)
	}

	metrics, err := reporter.GetCustomerMetrics(ctx)
	if err != nil {
		return err
	}
	cmd.Println("\nCustomer metrics:")
	cmd.Printf("  total users:       %d\n", metrics.TotalUsers)
	cmd.Printf("  new users (30d):   %d\n", metrics.NewUsers30d)
	cmd.Printf("  completed orders:  %d\n", metrics.CompletedOrders)
	cmd.Printf("  repeat buyers:     %d\n", metrics.RepeatBuyers)
	cmd.Printf("  avg order value:   %.2f\n", metrics.AvgOrderValue)
	cmd.Printf("  total revenue:     %.2f\n", metrics.TotalRevenue)

	return nil
}
