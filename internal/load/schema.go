// Package load persists generated datasets to PostgreSQL, honoring the
// table dependency order users, products, orders, order_items, events.
package load

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createSchemaSQL = `
-- Users: registered accounts
CREATE TABLE IF NOT EXISTS users (
    user_id             VARCHAR(36) PRIMARY KEY,
    email               VARCHAR(255) NOT NULL UNIQUE,
    first_name          VARCHAR(100),
    last_name           VARCHAR(100),
    signup_date         DATE NOT NULL,
    country             VARCHAR(50),
    city                VARCHAR(100),
    acquisition_channel VARCHAR(50),
    created_at          TIMESTAMP,
    updated_at          TIMESTAMP,
    loaded_at           TIMESTAMP
);

-- Products: catalog
CREATE TABLE IF NOT EXISTS products (
    product_id  VARCHAR(36) PRIMARY KEY,
    name        VARCHAR(200) NOT NULL,
    category    VARCHAR(50) NOT NULL,
    subcategory VARCHAR(50),
    price       NUMERIC(10,2) NOT NULL CHECK (price > 0),
    cost        NUMERIC(10,2) CHECK (cost > 0 AND cost < price),
    description TEXT,
    created_at  TIMESTAMP,
    updated_at  TIMESTAMP,
    loaded_at   TIMESTAMP
);

-- Orders: one row per checkout, total derived from order_items
CREATE TABLE IF NOT EXISTS orders (
    order_id         VARCHAR(36) PRIMARY KEY,
    user_id          VARCHAR(36) NOT NULL REFERENCES users(user_id),
    order_date       TIMESTAMP NOT NULL,
    status           VARCHAR(20) NOT NULL,
    total_amount     NUMERIC(12,2) NOT NULL DEFAULT 0,
    shipping_country VARCHAR(50),
    shipping_city    VARCHAR(100),
    created_at       TIMESTAMP,
    updated_at       TIMESTAMP,
    loaded_at        TIMESTAMP
);

-- Order items: line items, source of truth for order value
CREATE TABLE IF NOT EXISTS order_items (
    order_item_id SERIAL PRIMARY KEY,
    order_id      VARCHAR(36) NOT NULL REFERENCES orders(order_id),
    product_id    VARCHAR(36) NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    price_at_time NUMERIC(10,2) NOT NULL,
    loaded_at     TIMESTAMP
);

-- Events: behavioral stream; product_id is NULL for non-product events
CREATE TABLE IF NOT EXISTS events (
    event_id   VARCHAR(36) PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL REFERENCES users(user_id),
    event_type VARCHAR(30) NOT NULL,
    product_id VARCHAR(36) REFERENCES products(product_id),
    timestamp  TIMESTAMP NOT NULL,
    session_id VARCHAR(16),
    created_at TIMESTAMP,
    loaded_at  TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_users_signup_date ON users(signup_date);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS events CASCADE;
DROP TABLE IF EXISTS order_items CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS products CASCADE;
DROP TABLE IF EXISTS users CASCADE;
`

// Tables lists the schema's tables in loader dependency order.
var Tables = []string{"users", "products", "orders", "order_items", "events"}

// CreateSchema creates all tables and indexes.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropSchema drops all tables.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}
