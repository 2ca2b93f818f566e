// Copyright 2026 The AppTheory Authors
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

package kvstore

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/golang-migrate/migrate/v4/database"

	_ "modernc.org/sqlite"
)

// sqliteDriver adapts *sql.DB (backed by the pure-Go modernc.org/sqlite
// driver) to golang-migrate's database.Driver contract. golang-migrate's
// bundled sqlite3 driver requires the cgo mattn/go-sqlite3 binding; this
// one exists so the migration tooling still works with the cgo-free driver
// the rest of this package uses.
type sqliteDriver struct {
	db *sql.DB
}

const migrationsTable = "schema_migrations"

// newSQLiteMigrateDriver wraps an already-open *sql.DB, ensuring the
// version-tracking table exists.
func newSQLiteMigrateDriver(db *sql.DB) (database.Driver, error) {
	d := &sqliteDriver{db: db}
	if _, err := db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version INTEGER NOT NULL, dirty BOOLEAN NOT NULL)`,
		migrationsTable)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sqliteDriver) Open(_ string) (database.Driver, error) {
	return nil, fmt.Errorf("kvstore: sqliteDriver must be constructed via newSQLiteMigrateDriver, not Open")
}

func (d *sqliteDriver) Close() error { return nil }

// Lock/Unlock are no-ops: sqlite has no cross-process advisory lock
// primitive reachable from database/sql, and this store is only ever
// migrated by the single process that owns the file.
func (d *sqliteDriver) Lock() error   { return nil }
func (d *sqliteDriver) Unlock() error { return nil }

func (d *sqliteDriver) Run(migration io.Reader) error {
	stmt, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(string(stmt)); err != nil {
		return fmt.Errorf("kvstore: migration failed: %w", err)
	}
	return nil
}

func (d *sqliteDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, migrationsTable)); err != nil {
		tx.Rollback()
		return err
	}
	if version >= 0 {
		if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (version, dirty) VALUES (?, ?)`, migrationsTable), version, dirty); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (d *sqliteDriver) Version() (version int, dirty bool, err error) {
	row := d.db.QueryRow(fmt.Sprintf(`SELECT version, dirty FROM %s LIMIT 1`, migrationsTable))
	err = row.Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return -1, false, nil
	}
	return version, dirty, err
}

func (d *sqliteDriver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()
	for _, name := range tables {
		if _, err := d.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
			return err
		}
	}
	return nil
}
