package load

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercedata/ecomgen/internal/datagen"
	"github.com/commercedata/ecomgen/internal/datagen/ecommerce"
	"github.com/commercedata/ecomgen/internal/db"
	"github.com/commercedata/ecomgen/internal/logging"
)

// Loader writes a generated dataset into PostgreSQL with batched inserts.
type Loader struct {
	pool *pgxpool.Pool
	cfg  datagen.BatchInsertConfig
}

// New creates a loader backed by the given connection pool.
func New(pool *pgxpool.Pool) *Loader {
	return &Loader{
		pool: pool,
		cfg:  datagen.DefaultBatchConfig(),
	}
}

// CreateSchema creates the target tables if they do not exist.
func (l *Loader) CreateSchema(ctx context.Context) error {
	return CreateSchema(ctx, l.pool)
}

// DropSchema drops the target tables.
func (l *Loader) DropSchema(ctx context.Context) error {
	return DropSchema(ctx, l.pool)
}

// Truncate empties all target tables.
func (l *Loader) Truncate(ctx context.Context) error {
	sql := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(Tables, ", "))
	if _, err := l.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	logging.Info().Msg("Truncated tables")
	return nil
}

// LoadDataset inserts all five tables in dependency order: users and
// products first, then orders, then order items and events. Every row is
// stamped with the same load timestamp, and the run is recorded in the
// metadata table. Returns the run id.
func (l *Loader) LoadDataset(ctx context.Context, ds *ecommerce.Dataset, seed uint64) (string, error) {
	runID := uuid.NewString()
	loadedAt := time.Now().UTC()

	logging.Info().
		Str("run_id", runID).
		Int("users", len(ds.Users)).
		Int("products", len(ds.Products)).
		Int("orders", len(ds.Orders)).
		Int("order_items", len(ds.OrderItems)).
		Int("events", len(ds.Events)).
		Msg("Loading dataset")

	if err := l.loadUsers(ctx, ds.Users, loadedAt); err != nil {
		return "", fmt.Errorf("failed to load users: %w", err)
	}
	if err := l.loadProducts(ctx, ds.Products, loadedAt); err != nil {
		return "", fmt.Errorf("failed to load products: %w", err)
	}
	if err := l.loadOrders(ctx, ds.Orders, loadedAt); err != nil {
		return "", fmt.Errorf("failed to load orders: %w", err)
	}
	if err := l.loadOrderItems(ctx, ds.OrderItems, loadedAt); err != nil {
		return "", fmt.Errorf("failed to load order items: %w", err)
	}
	if err := l.loadEvents(ctx, ds.Events, loadedAt); err != nil {
		return "", fmt.Errorf("failed to load events: %w", err)
	}

	info := db.RunInfo{
		RunID: runID,
		Seed:  seed,
		Rows: map[string]int{
			"users":       len(ds.Users),
			"products":    len(ds.Products),
			"orders":      len(ds.Orders),
			"order_items": len(ds.OrderItems),
			"events":      len(ds.Events),
		},
	}
	if err := db.SaveRunMetadata(ctx, l.pool, info); err != nil {
		return "", err
	}

	logging.Info().Str("run_id", runID).Msg("Dataset loaded")
	return runID, nil
}

// RowCounts returns the current row count of every target table.
func (l *Loader) RowCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var count int64
		err := l.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

func (l *Loader) loadUsers(ctx context.Context, users []ecommerce.User, loadedAt time.Time) error {
	batch := make([]string, 0, l.cfg.BatchSize)
	progress := datagen.NewProgressReporter("users", int64(len(users)), l.cfg.ProgressInterval)

	for _, u := range users {
		batch = append(batch, fmt.Sprintf("(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)",
			sqlString(u.ID),
			sqlString(u.Email),
			sqlString(u.FirstName),
			sqlString(u.LastName),
			sqlDate(u.SignupDate),
			sqlString(u.Country),
			sqlString(u.City),
			sqlString(u.AcquisitionChannel),
			sqlTime(u.CreatedAt),
			sqlTime(u.UpdatedAt),
			sqlTime(loadedAt),
		))

		if len(batch) >= l.cfg.BatchSize {
			if err := l.executeBatchInsert(ctx, "users", usersColumns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.executeBatchInsert(ctx, "users", usersColumns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

func (l *Loader) loadProducts(ctx context.Context, products []ecommerce.Product, loadedAt time.Time) error {
	batch := make([]string, 0, l.cfg.BatchSize)
	progress := datagen.NewProgressReporter("products", int64(len(products)), l.cfg.ProgressInterval)

	for _, p := range products {
		batch = append(batch, fmt.Sprintf("(%s, %s, %s, %s, %.2f, %.2f, %s, %s, %s, %s)",
			sqlString(p.ID),
			sqlString(p.Name),
			sqlString(p.Category),
			sqlString(p.Subcategory),
			p.Price,
			p.Cost,
			sqlString(p.Description),
			sqlTime(p.CreatedAt),
			sqlTime(p.UpdatedAt),
			sqlTime(loadedAt),
		))

		if len(batch) >= l.cfg.BatchSize {
			if err := l.executeBatchInsert(ctx, "products", productsColumns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.executeBatchInsert(ctx, "products", productsColumns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

func (l *Loader) loadOrders(ctx context.Context, orders []ecommerce.Order, loadedAt time.Time) error {
	batch := make([]string, 0, l.cfg.BatchSize)
	progress := datagen.NewProgressReporter("orders", int64(len(orders)), l.cfg.ProgressInterval)

	for _, o := range orders {
		batch = append(batch, fmt.Sprintf("(%s, %s, %s, %s, %.2f, %s, %s, %s, %s, %s)",
			sqlString(o.ID),
			sqlString(o.UserID),
			sqlTime(o.OrderDate),
			sqlString(o.Status),
			o.TotalAmount,
			sqlString(o.ShippingCountry),
			sqlString(o.ShippingCity),
			sqlTime(o.CreatedAt),
			sqlTime(o.UpdatedAt),
			sqlTime(loadedAt),
		))

		if len(batch) >= l.cfg.BatchSize {
			if err := l.executeBatchInsert(ctx, "orders", ordersColumns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.executeBatchInsert(ctx, "orders", ordersColumns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

func (l *Loader) loadOrderItems(ctx context.Context, items []ecommerce.OrderItem, loadedAt time.Time) error {
	batch := make([]string, 0, l.cfg.BatchSize)
	progress := datagen.NewProgressReporter("order_items", int64(len(items)), l.cfg.ProgressInterval)

	for _, it := range items {
		batch = append(batch, fmt.Sprintf("(%s, %s, %d, %.2f, %s)",
			sqlString(it.OrderID),
			sqlString(it.ProductID),
			it.Quantity,
			it.PriceAtTime,
			sqlTime(loadedAt),
		))

		if len(batch) >= l.cfg.BatchSize {
			if err := l.executeBatchInsert(ctx, "order_items", orderItemsColumns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.executeBatchInsert(ctx, "order_items", orderItemsColumns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

func (l *Loader) loadEvents(ctx context.Context, events []ecommerce.Event, loadedAt time.Time) error {
	batch := make([]string, 0, l.cfg.BatchSize)
	progress := datagen.NewProgressReporter("events", int64(len(events)), l.cfg.ProgressInterval)

	for _, e := range events {
		batch = append(batch, fmt.Sprintf("(%s, %s, %s, %s, %s, %s, %s, %s)",
			sqlString(e.ID),
			sqlString(e.UserID),
			sqlString(e.Type),
			sqlNullableString(e.ProductID),
			sqlTime(e.Timestamp),
			sqlString(e.SessionID),
			sqlTime(e.CreatedAt),
			sqlTime(loadedAt),
		))

		if len(batch) >= l.cfg.BatchSize {
			if err := l.executeBatchInsert(ctx, "events", eventsColumns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.executeBatchInsert(ctx, "events", eventsColumns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

const (
	usersColumns = "(user_id, email, first_name, last_name, signup_date, country, city, " +
		"acquisition_channel, created_at, updated_at, loaded_at)"
	productsColumns = "(product_id, name, category, subcategory, price, cost, description, " +
		"created_at, updated_at, loaded_at)"
	ordersColumns = "(order_id, user_id, order_date, status, total_amount, shipping_country, " +
		"shipping_city, created_at, updated_at, loaded_at)"
	orderItemsColumns = "(order_id, product_id, quantity, price_at_time, loaded_at)"
	eventsColumns     = "(event_id, user_id, event_type, product_id, timestamp, session_id, " +
		"created_at, loaded_at)"
)

func (l *Loader) executeBatchInsert(ctx context.Context, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	_, err := l.pool.Exec(ctx, sql)
	return err
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlNullableString(s string) string {
	if s == "" {
		return "NULL"
	}
	return sqlString(s)
}

func sqlTime(t time.Time) string {
	return "'" + t.UTC().Format("2006-01-02 15:04:05") + "'"
}

func sqlDate(t time.Time) string {
	return "'" + t.Format("2006-01-02") + "'"
}
