// Package report issues read-only KPI queries against the loaded schema:
// daily revenue, product revenue ranking, and customer metrics. It depends
// only on the table contract, not on generation internals.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyRevenue is one day of completed-order revenue.
type DailyRevenue struct {
	Day           time.Time
	Orders        int64
	Revenue       float64
	AvgOrderValue float64
}

// ProductRevenue is one row of the product revenue ranking.
type ProductRevenue struct {
	ProductID string
	Name      string
	Category  string
	UnitsSold int64
	Revenue   float64
}

// CustomerMetrics aggregates customer behavior across the whole dataset.
type CustomerMetrics struct {
	TotalUsers      int64
	NewUsers30d     int64
	CompletedOrders int64
	RepeatBuyers    int64
	AvgOrderValue   float64
	TotalRevenue    float64
}

// Reporter runs KPI queries against a loaded database.
type Reporter struct {
	pool *pgxpool.Pool
}

// New creates a reporter backed by the given connection pool.
func New(pool *pgxpool.Pool) *Reporter {
	return &Reporter{pool: pool}
}

// GetDailyRevenue returns per-day completed-order revenue for the last
// days days, newest first.
func (r *Reporter) GetDailyRevenue(ctx context.Context, days int) ([]DailyRevenue, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT DATE(order_date) AS day,
               COUNT(*) AS orders,
               ROUND(SUM(total_amount), 2) AS revenue,
               ROUND(AVG(total_amount), 2) AS avg_order_value
        FROM orders
        WHERE status = 'completed'
          AND order_date >= CURRENT_DATE - $1::int
        GROUP BY DATE(order_date)
        ORDER BY day DESC
    `, days)
	if err != nil {
		return nil, fmt.Errorf("daily revenue query: %w", err)
	}
	defer rows.Close()

	var out []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue, &d.AvgOrderValue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetTopProducts returns the top products by line-item revenue.
func (r *Reporter) GetTopProducts(ctx context.Context, limit int) ([]ProductRevenue, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT p.product_id, p.name, p.category,
               COALESCE(SUM(oi.quantity), 0) AS units_sold,
               ROUND(COALESCE(SUM(oi.quantity * oi.price_at_time), 0), 2) AS revenue
        FROM order_items oi
        JOIN products p ON oi.product_id = p.product_id
        GROUP BY p.product_id, p.name, p.category
        ORDER BY revenue DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("top products query: %w", err)
	}
	defer rows.Close()

	var out []ProductRevenue
	for rows.Next() {
		var p ProductRevenue
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetCustomerMetrics returns aggregate customer KPIs.
func (r *Reporter) GetCustomerMetrics(ctx context.Context) (*CustomerMetrics, error) {
	var m CustomerMetrics

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&m.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("customer metrics: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM users
        WHERE signup_date >= CURRENT_DATE - INTERVAL '30 days'
    `).Scan(&m.NewUsers30d)
	if err != nil {
		return nil, fmt.Errorf("customer metrics: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
        SELECT COUNT(*),
               COALESCE(ROUND(AVG(total_amount), 2), 0),
               COALESCE(ROUND(SUM(total_amount), 2), 0)
        FROM orders
        WHERE status = 'completed'
    `).Scan(&m.CompletedOrders, &m.AvgOrderValue, &m.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("customer metrics: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM (
            SELECT user_id FROM orders
            GROUP BY user_id
            HAVING COUNT(*) > 1
        ) t
    `).Scan(&m.RepeatBuyers)
	if err != nil {
		return nil, fmt.Errorf("customer metrics: %w", err)
	}

	return &m, nil
}
