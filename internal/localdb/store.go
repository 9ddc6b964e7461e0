// Package localdb implements the embedded local store: transactional CRUD
// for password groups, entries and the singleton sync-configuration row in
// a single SQLite file.
//
// The SQLite driver is registered by the importing binary (or test) with a
// blank import of modernc.org/sqlite.
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/newguy103/passvault-client/internal/dbx"
	"github.com/newguy103/passvault-client/internal/localdb/migrations"
	"github.com/newguy103/passvault-client/internal/logging"
)

// RootGroupName is the display name given to the root group at seeding.
const RootGroupName = "Root"

// Store is the local database. All exported methods open their own
// transaction and are safe for concurrent use; the underlying pool is shared.
type Store struct {
	db  *sql.DB
	log logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the database file at path, applies the schema,
// enables foreign-key enforcement and seeds the root group and default sync
// row on first run. Re-opening an existing file is a no-op for seeding.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db, log: logger.With("component", "localdb")}
	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}

	s.log.Debug(ctx, "database opened", "path", path)
	return s, nil
}

// seed creates the root group and the default sync row if neither exists yet.
func (s *Store) seed(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var roots int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM password_groups WHERE is_root = 1`)
		if err := row.Scan(&roots); err != nil {
			return err
		}

		if roots == 0 {
			rootID := uuid.New()
			_, err := tx.ExecContext(ctx,
				`INSERT INTO password_groups (group_id, group_name, parent_id, is_root) VALUES (?, ?, NULL, 1)`,
				rootID.String(), RootGroupName,
			)
			if err != nil {
				return err
			}
			s.log.Info(ctx, "created root group", "group_id", rootID)
		}

		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sync_info (id) VALUES (1)`)
		return err
	})
}

// Close releases the underlying connection pool. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// groupExists reports whether a group row with the given id exists.
func groupExists(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (bool, error) {
	var one int
	row := tx.QueryRowContext(ctx, `SELECT 1 FROM password_groups WHERE group_id = ?`, id.String())
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
