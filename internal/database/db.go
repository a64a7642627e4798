// Copyright 2024 Manu Pro
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlx connection and provides access to stores
type DB struct {
	*sqlx.DB
	Sites     *SiteStore
	Shipments *ShipmentStore
	Users     *UserStore
}

// Open opens a database connection, initializes stores and creates the schema
func Open(dbPath string) (*DB, error) {
	db, err := sqlx.Open("sqlite3", withForeignKeys(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a fresh database
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	database := New(db)
	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

// New wires the stores around an already opened connection
func New(db *sqlx.DB) *DB {
	return &DB{
		DB:        db,
		Sites:     NewSiteStore(db),
		Shipments: NewShipmentStore(db),
		Users:     NewUserStore(db),
	}
}

// withForeignKeys asks the driver to enable foreign keys on every new connection
func withForeignKeys(dbPath string) string {
	if strings.Contains(dbPath, "_foreign_keys") {
		return dbPath
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on"
}

// migrate creates the database schema
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive'))
	);

	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL,
		handler_count INTEGER NOT NULL CHECK (handler_count > 0),
		shipment_date TEXT NOT NULL,
		FOREIGN KEY (site_id) REFERENCES sites(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_sites_status ON sites(status);
	CREATE INDEX IF NOT EXISTS idx_shipments_site ON shipments(site_id);
	CREATE INDEX IF NOT EXISTS idx_shipments_date ON shipments(shipment_date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// IsHealthy pings the database, giving up when ctx is done
func (db *DB) IsHealthy(ctx context.Context) error {
	return db.PingContext(ctx)
}
