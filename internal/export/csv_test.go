package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/commercedata/ecomgen/internal/datagen/ecommerce"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return records
}

func TestWriteDataset(t *testing.T) {
	g := ecommerce.NewAt(42, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	ds, err := g.GenerateAll(ecommerce.Counts{Users: 5, Products: 3, Orders: 8, Events: 30})
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteDataset(ds, dir); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}

	tables := map[string]struct {
		columns int
		rows    int
	}{
		"users":       {10, len(ds.Users)},
		"products":    {9, len(ds.Products)},
		"orders":      {9, len(ds.Orders)},
		"order_items": {4, len(ds.OrderItems)},
		"events":      {7, len(ds.Events)},
	}

	for name, want := range tables {
		records := readCSV(t, filepath.Join(dir, name+".csv"))
		if len(records) != want.rows+1 {
			t.Errorf("%s: expected %d rows plus header, got %d records",
				name, want.rows, len(records))
		}
		for i, rec := range records {
			if len(rec) != want.columns {
				t.Fatalf("%s row %d: expected %d columns, got %d",
					name, i, want.columns, len(rec))
			}
		}
	}
}

func TestWriteDatasetHeaders(t *testing.T) {
	ds := &ecommerce.Dataset{
		Users:      []ecommerce.User{},
		Products:   []ecommerce.Product{},
		Orders:     []ecommerce.Order{},
		OrderItems: []ecommerce.OrderItem{},
		Events:     []ecommerce.Event{},
	}

	dir := t.TempDir()
	if err := WriteDataset(ds, dir); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "orders.csv"))
	if len(records) != 1 {
		t.Fatalf("Expected header only, got %d records", len(records))
	}
	want := []string{"order_id", "user_id", "order_date", "status", "total_amount",
		"shipping_country", "shipping_city", "created_at", "updated_at"}
	for i, col := range want {
		if records[0][i] != col {
			t.Errorf("Column %d: expected %s, got %s", i, col, records[0][i])
		}
	}
}

func TestWriteDatasetCreatesDirectory(t *testing.T) {
	ds := &ecommerce.Dataset{}
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := WriteDataset(ds, dir); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.csv")); err != nil {
		t.Errorf("Expected users.csv in created directory: %v", err)
	}
}
