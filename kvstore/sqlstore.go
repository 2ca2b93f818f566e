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
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLStore is the production Store, backed by modernc.org/sqlite (pure Go,
// no cgo) with its schema applied through golang-migrate/migrate/v4 (spec
// §4.J).
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (creating if needed) a sqlite database at dsn and
// brings its schema up to date.
func OpenSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite serializes writers; avoid SQLITE_BUSY under our own load

	driver, err := newSQLiteMigrateDriver(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// Get implements kvstore.Store.
func (s *SQLStore) Get(ctx context.Context, pk, sk string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT count, window_type, window_id, ttl, created_at, updated_at, metadata
		   FROM rate_limit_entries WHERE pk = ? AND sk = ?`, pk, sk)
	var e Entry
	e.PK, e.SK = pk, sk
	var metadataJSON string
	if err := row.Scan(&e.Count, &e.WindowType, &e.WindowID, &e.TTL, &e.CreatedAt, &e.UpdatedAt, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
		return nil, err
	}
	return &e, nil
}

// PutIfAbsent implements kvstore.Store.
func (s *SQLStore) PutIfAbsent(ctx context.Context, entry Entry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rate_limit_entries (pk, sk, count, window_type, window_id, ttl, created_at, updated_at, metadata)
		   SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		   WHERE NOT EXISTS (SELECT 1 FROM rate_limit_entries WHERE pk = ? AND sk = ?)`,
		entry.PK, entry.SK, entry.Count, entry.WindowType, entry.WindowID, entry.TTL, entry.CreatedAt, entry.UpdatedAt, string(metadataJSON),
		entry.PK, entry.SK)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// ConditionalAdd implements kvstore.Store by translating the `count <
// limit OR NOT EXISTS` predicate into a single UPDATE, falling back to an
// INSERT when zero rows were affected and no entry exists yet.
func (s *SQLStore) ConditionalAdd(ctx context.Context, a Add) (*Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry, err := conditionalAddTx(ctx, tx, a)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// TransactWrite implements kvstore.Store: every Add is applied within one
// sqlite transaction, so a condition failure on any window rolls every
// other window's attempted add back too.
func (s *SQLStore) TransactWrite(ctx context.Context, ops []Add) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range ops {
		if _, err := conditionalAddTx(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// conditionalAddTx performs one conditional add within tx, without
// committing — callers control the transaction boundary.
func conditionalAddTx(ctx context.Context, tx *sql.Tx, a Add) (*Entry, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE rate_limit_entries SET count = count + ?, updated_at = ?
		   WHERE pk = ? AND sk = ? AND count + ? <= ?`,
		a.Delta, a.Now, a.PK, a.SK, a.Delta, a.Limit)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n > 0 {
		return readEntryTx(ctx, tx, a.PK, a.SK)
	}

	// Zero rows: either the entry doesn't exist yet, or it exists but
	// failed the condition.
	existing, err := readEntryTx(ctx, tx, a.PK, a.SK)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConditionFailed
	}
	if a.Limit <= 0 {
		return nil, ErrConditionFailed
	}

	metadataJSON, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rate_limit_entries (pk, sk, count, window_type, window_id, ttl, created_at, updated_at, metadata)
		   SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		   WHERE NOT EXISTS (SELECT 1 FROM rate_limit_entries WHERE pk = ? AND sk = ?)`,
		a.PK, a.SK, a.Delta, a.WindowType, a.WindowID, a.TTL, a.Now, a.Now, string(metadataJSON),
		a.PK, a.SK); err != nil {
		return nil, err
	}
	entry, err := readEntryTx(ctx, tx, a.PK, a.SK)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		// Lost the insert race within our own transaction scope; the
		// caller retries the whole operation.
		return nil, ErrConditionFailed
	}
	if entry.Count != a.Delta {
		// Another writer's row won the race and it now exceeds what we
		// asked for; treat as a condition failure so the caller retries.
		return nil, fmt.Errorf("kvstore: %w: concurrent first-write race", ErrConditionFailed)
	}
	return entry, nil
}

func readEntryTx(ctx context.Context, tx *sql.Tx, pk, sk string) (*Entry, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT count, window_type, window_id, ttl, created_at, updated_at, metadata
		   FROM rate_limit_entries WHERE pk = ? AND sk = ?`, pk, sk)
	var e Entry
	e.PK, e.SK = pk, sk
	var metadataJSON string
	if err := row.Scan(&e.Count, &e.WindowType, &e.WindowID, &e.TTL, &e.CreatedAt, &e.UpdatedAt, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
		return nil, err
	}
	return &e, nil
}
