// Package export writes generated datasets to CSV files, one file per
// table, with column order matching the database schema.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/commercedata/ecomgen/internal/datagen/ecommerce"
	"github.com/commercedata/ecomgen/internal/logging"
)

const timeLayout = "2006-01-02 15:04:05"
const dateLayout = "2006-01-02"

// WriteDataset writes all five tables as CSV files into dir, creating the
// directory if needed.
func WriteDataset(ds *ecommerce.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writers := []struct {
		name  string
		write func(w *csv.Writer) error
	}{
		{"users", func(w *csv.Writer) error { return writeUsers(w, ds.Users) }},
		{"products", func(w *csv.Writer) error { return writeProducts(w, ds.Products) }},
		{"orders", func(w *csv.Writer) error { return writeOrders(w, ds.Orders) }},
		{"order_items", func(w *csv.Writer) error { return writeOrderItems(w, ds.OrderItems) }},
		{"events", func(w *csv.Writer) error { return writeEvents(w, ds.Events) }},
	}

	for _, table := range writers {
		path := filepath.Join(dir, table.name+".csv")
		if err := writeFile(path, table.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logging.Info().Str("file", path).Msg("Wrote table")
	}

	return nil
}

func writeFile(path string, write func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeUsers(w *csv.Writer, users []ecommerce.User) error {
	header := []string{"user_id", "email", "first_name", "last_name", "signup_date",
		"country", "city", "acquisition_channel", "created_at", "updated_at"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, u := range users {
		record := []string{
			u.ID, u.Email, u.FirstName, u.LastName,
			u.SignupDate.Format(dateLayout),
			u.Country, u.City, u.AcquisitionChannel,
			formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeProducts(w *csv.Writer, products []ecommerce.Product) error {
	header := []string{"product_id", "name", "category", "subcategory", "price",
		"cost", "description", "created_at", "updated_at"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			p.ID, p.Name, p.Category, p.Subcategory,
			formatAmount(p.Price), formatAmount(p.Cost), p.Description,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeOrders(w *csv.Writer, orders []ecommerce.Order) error {
	header := []string{"order_id", "user_id", "order_date", "status", "total_amount",
		"shipping_country", "shipping_city", "created_at", "updated_at"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, o := range orders {
		record := []string{
			o.ID, o.UserID, formatTime(o.OrderDate), o.Status,
			formatAmount(o.TotalAmount), o.ShippingCountry, o.ShippingCity,
			formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeOrderItems(w *csv.Writer, items []ecommerce.OrderItem) error {
	header := []string{"order_id", "product_id", "quantity", "price_at_time"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{
			it.OrderID, it.ProductID,
			strconv.Itoa(it.Quantity), formatAmount(it.PriceAtTime),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeEvents(w *csv.Writer, events []ecommerce.Event) error {
	header := []string{"event_id", "user_id", "event_type", "product_id",
		"timestamp", "session_id", "created_at"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			e.ID, e.UserID, e.Type, e.ProductID,
			formatTime(e.Timestamp), e.SessionID, formatTime(e.CreatedAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
