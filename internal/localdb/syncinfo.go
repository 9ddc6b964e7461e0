package localdb

import (
	"context"

	"github.com/newguy103/passvault-client/internal/dbx"
	"github.com/newguy103/passvault-client/internal/models"
)

// GetSyncInfo reads the singleton sync-configuration row.
func (s *Store) GetSyncInfo(ctx context.Context) (*models.SyncInfo, error) {
	var out models.SyncInfo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var enabled int
		row := tx.QueryRowContext(ctx, `SELECT username, server_url, sync_enabled FROM sync_info WHERE id = 1`)
		if err := row.Scan(&out.Username, &out.ServerURL, &enabled); err != nil {
			return err
		}
		out.SyncEnabled = enabled == 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetSyncInfo replaces the sync-configuration row. The access token is never
// stored here; it belongs to the credential store.
func (s *Store) SetSyncInfo(ctx context.Context, username, serverURL string, syncEnabled bool) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE sync_info SET username = ?, server_url = ?, sync_enabled = ? WHERE id = 1`,
			username, serverURL, boolToInt(syncEnabled),
		)
		return err
	})
}

// ToggleSyncEnabled flips only the sync_enabled flag, leaving the saved
// username and server untouched.
func (s *Store) ToggleSyncEnabled(ctx context.Context, enabled bool) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE sync_info SET sync_enabled = ? WHERE id = 1`, boolToInt(enabled))
		return err
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
