// Package quality runs read-only data quality checks against the loaded
// schema: null checks, value ranges, referential integrity, derived-total
// consistency, and freshness.
package quality

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercedata/ecomgen/internal/logging"
)

// Check statuses.
const (
	StatusPass    = "PASS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// Result is the outcome of one quality check.
type Result struct {
	Check   string
	Table   string
	Column  string
	Status  string
	Count   int64
	Message string
}

// Required columns per table for null checks.
var requiredColumns = map[string][]string{
	"users":       {"user_id", "email", "signup_date"},
	"products":    {"product_id", "name", "price"},
	"orders":      {"order_id", "user_id", "order_date", "total_amount"},
	"order_items": {"order_id", "product_id", "quantity", "price_at_time"},
	"events":      {"event_id", "user_id", "event_type", "timestamp"},
}

// Checker runs quality checks against a loaded database.
type Checker struct {
	pool *pgxpool.Pool
}

// New creates a checker backed by the given connection pool.
func New(pool *pgxpool.Pool) *Checker {
	return &Checker{pool: pool}
}

// CheckNulls verifies that required columns of a table contain no NULLs.
func (c *Checker) CheckNulls(ctx context.Context, table string) ([]Result, error) {
	columns, ok := requiredColumns[table]
	if !ok {
		return []Result{{
			Check: "null_check", Table: table, Status: StatusSkipped,
			Message: "table not configured",
		}}, nil
	}

	results := make([]Result, 0, len(columns))
	for _, column := range columns {
		var nullCount int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", table, column)
		if err := c.pool.QueryRow(ctx, query).Scan(&nullCount); err != nil {
			return nil, fmt.Errorf("null check %s.%s: %w", table, column, err)
		}

		r := Result{Check: "null_check", Table: table, Column: column, Count: nullCount}
		if nullCount == 0 {
			r.Status = StatusPass
			r.Message = "no null values"
		} else {
			r.Status = StatusFailed
			r.Message = fmt.Sprintf("found %d null values", nullCount)
			logging.Warn().Str("table", table).Str("column", column).
				Int64("nulls", nullCount).Msg("Null check failed")
		}
		results = append(results, r)
	}

	return results, nil
}

// CheckValueRange counts rows whose column falls below a minimum.
func (c *Checker) CheckValueRange(ctx context.Context, table, column string, min float64) (Result, error) {
	var outliers int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s < $1", table, column)
	if err := c.pool.QueryRow(ctx, query, min).Scan(&outliers); err != nil {
		return Result{}, fmt.Errorf("range check %s.%s: %w", table, column, err)
	}

	r := Result{Check: "range_check", Table: table, Column: column, Count: outliers}
	if outliers == 0 {
		r.Status = StatusPass
		r.Message = "no outliers"
	} else {
		r.Status = StatusFailed
		r.Message = fmt.Sprintf("found %d values below %v", outliers, min)
		logging.Warn().Str("table", table).Str("column", column).
			Int64("outliers", outliers).Msg("Range check failed")
	}
	return r, nil
}

// CheckReferentialIntegrity counts child rows whose foreign key has no
// matching parent row.
func (c *Checker) CheckReferentialIntegrity(ctx context.Context, child, childColumn, parent, parentColumn string) (Result, error) {
	var orphans int64
	query := fmt.Sprintf(`
        SELECT COUNT(*)
        FROM %s c
        LEFT JOIN %s p ON c.%s = p.%s
        WHERE c.%s IS NOT NULL AND p.%s IS NULL
    `, child, parent, childColumn, parentColumn, childColumn, parentColumn)
	if err := c.pool.QueryRow(ctx, query).Scan(&orphans); err != nil {
		return Result{}, fmt.Errorf("referential check %s.%s: %w", child, childColumn, err)
	}

	r := Result{Check: "referential_integrity", Table: child, Column: childColumn, Count: orphans}
	if orphans == 0 {
		r.Status = StatusPass
		r.Message = "no orphan records"
	} else {
		r.Status = StatusFailed
		r.Message = fmt.Sprintf("found %d orphan records", orphans)
		logging.Warn().Str("table", child).Str("column", childColumn).
			Int64("orphans", orphans).Msg("Referential check failed")
	}
	return r, nil
}

// CheckOrderTotals verifies that each order's total matches the sum of its
// line items, allowing for the flat shipping fee on large orders.
func (c *Checker) CheckOrderTotals(ctx context.Context) (Result, error) {
	var mismatches int64
	err := c.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM (
            SELECT o.order_id,
                   o.total_amount,
                   COALESCE(SUM(oi.quantity * oi.price_at_time), 0) AS item_sum
            FROM orders o
            LEFT JOIN order_items oi ON oi.order_id = o.order_id
            GROUP BY o.order_id, o.total_amount
        ) t
        WHERE ABS(t.total_amount - t.item_sum) > 0.01
          AND ABS(t.total_amount - t.item_sum - 9.99) > 0.01
    `).Scan(&mismatches)
	if err != nil {
		return Result{}, fmt.Errorf("order total check: %w", err)
	}

	r := Result{Check: "order_totals", Table: "orders", Column: "total_amount", Count: mismatches}
	if mismatches == 0 {
		r.Status = StatusPass
		r.Message = "totals match line items"
	} else {
		r.Status = StatusFailed
		r.Message = fmt.Sprintf("found %d orders whose total does not match line items", mismatches)
		logging.Warn().Int64("mismatches", mismatches).Msg("Order total check failed")
	}
	return r, nil
}

// CheckPurchaseEvents verifies that every purchase event corresponds to an
// order with the same user and timestamp.
func (c *Checker) CheckPurchaseEvents(ctx context.Context) (Result, error) {
	var unmatched int64
	err := c.pool.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM events e
        LEFT JOIN orders o
          ON o.user_id = e.user_id AND o.order_date = e.timestamp
        WHERE e.event_type = 'purchase' AND o.order_id IS NULL
    `).Scan(&unmatched)
	if err != nil {
		return Result{}, fmt.Errorf("purchase event check: %w", err)
	}

	r := Result{Check: "purchase_events", Table: "events", Column: "event_type", Count: unmatched}
	if unmatched == 0 {
		r.Status = StatusPass
		r.Message = "every purchase event matches an order"
	} else {
		r.Status = StatusFailed
		r.Message = fmt.Sprintf("found %d purchase events without a matching order", unmatched)
		logging.Warn().Int64("unmatched", unmatched).Msg("Purchase event check failed")
	}
	return r, nil
}

// CheckFreshness verifies that the newest row of a table is at most
// maxAgeDays old.
func (c *Checker) CheckFreshness(ctx context.Context, table, column string, maxAgeDays int) (Result, error) {
	var ageDays *float64
	query := fmt.Sprintf(
		"SELECT EXTRACT(EPOCH FROM (NOW() - MAX(%s))) / 86400 FROM %s", column, table)
	if err := c.pool.QueryRow(ctx, query).Scan(&ageDays); err != nil {
		return Result{}, fmt.Errorf("freshness check %s: %w", table, err)
	}

	r := Result{Check: "freshness_check", Table: table, Column: column}
	switch {
	case ageDays == nil:
		r.Status = StatusFailed
		r.Message = "no data found"
	case *ageDays <= float64(maxAgeDays):
		r.Status = StatusPass
		r.Message = fmt.Sprintf("newest row is %.1f days old", *ageDays)
	default:
		r.Status = StatusFailed
		r.Message = fmt.Sprintf("newest row is %.1f days old", *ageDays)
		logging.Warn().Str("table", table).Float64("age_days", *ageDays).
			Msg("Freshness check failed")
	}
	return r, nil
}

// RunAll executes the full battery of checks and logs a summary.
func (c *Checker) RunAll(ctx context.Context) ([]Result, error) {
	var all []Result

	for _, table := range []string{"users", "products", "orders", "order_items", "events"} {
		results, err := c.CheckNulls(ctx, table)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}

	ranges := []struct {
		table, column string
		min           float64
	}{
		{"products", "price", 0.01},
		{"products", "cost", 0.01},
		{"orders", "total_amount", 0},
		{"order_items", "quantity", 1},
	}
	for _, rc := range ranges {
		r, err := c.CheckValueRange(ctx, rc.table, rc.column, rc.min)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	refs := []struct {
		child, childColumn, parent, parentColumn string
	}{
		{"orders", "user_id", "users", "user_id"},
		{"order_items", "order_id", "orders", "order_id"},
		{"order_items", "product_id", "products", "product_id"},
		{"events", "user_id", "users", "user_id"},
		{"events", "product_id", "products", "product_id"},
	}
	for _, rc := range refs {
		r, err := c.CheckReferentialIntegrity(ctx, rc.child, rc.childColumn, rc.parent, rc.parentColumn)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	totals, err := c.CheckOrderTotals(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, totals)

	purchases, err := c.CheckPurchaseEvents(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, purchases)

	for _, fc := range []struct {
		table, column string
	}{
		{"orders", "order_date"},
		{"events", "timestamp"},
	} {
		r, err := c.CheckFreshness(ctx, fc.table, fc.column, 2)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	var passed, failed, skipped int
	for _, r := range all {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	logging.Info().
		Int("passed", passed).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("Data quality summary")

	return all, nil
}
