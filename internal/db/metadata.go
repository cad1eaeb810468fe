//-------------------------------------------------------------------------
//
// ecomgen - E-commerce Analytics Data Generator
//
// Copyright (c) 2025 - 2026, CommerceData Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercedata/ecomgen/internal/logging"
	"github.com/commercedata/ecomgen/pkg/version"
)

const metadataTable = "ecomgen_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS ecomgen_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// RunInfo describes one load run for the metadata table.
type RunInfo struct {
	RunID string
	Seed  uint64
	Rows  map[string]int
}

// SaveRunMetadata records the load run in the database so later runs and
// the verify/report commands can see how the data was produced.
func SaveRunMetadata(ctx context.Context, pool *pgxpool.Pool, info RunInfo) error {
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"run_id":    info.RunID,
		"seed":      strconv.FormatUint(info.Seed, 10),
		"version":   version.Short(),
		"loaded_at": time.Now().UTC().Format(time.RFC3339),
	}
	for table, rows := range info.Rows {
		metadata["rows_"+table] = strconv.Itoa(rows)
	}

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO ecomgen_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("run_id", info.RunID).
		Uint64("seed", info.Seed).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM ecomgen_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM ecomgen_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
