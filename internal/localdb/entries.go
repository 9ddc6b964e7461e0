package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/common"
	"github.com/newguy103/passvault-client/internal/dbx"
	"github.com/newguy103/passvault-client/internal/models"
)

// DefaultPageSize is the page size used when a caller does not specify one.
const DefaultPageSize = 100

// CreateEntry creates an entry under groupID with a locally generated
// identifier and the current time as its creation timestamp.
func (s *Store) CreateEntry(ctx context.Context, groupID uuid.UUID, fields models.EntryFields) (*models.Entry, error) {
	return s.CreateEntryWithID(ctx, uuid.New(), groupID, fields, time.Now().UTC())
}

// CreateEntryWithID creates an entry using a caller-supplied identifier and
// timestamp. The reconciler uses this path to mirror the remote-assigned
// identity and created_at into the local copy.
func (s *Store) CreateEntryWithID(ctx context.Context, id uuid.UUID, groupID uuid.UUID, fields models.EntryFields, createdAt time.Time) (*models.Entry, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	createdAt = createdAt.UTC()

	var out *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := groupExists(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("group %s: %w", groupID, common.ErrNotFound)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO password_entries (entry_id, group_id, title, username, password, url, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id.String(), groupID.String(),
			fields.Title, fields.Username, fields.Password,
			nullableString(fields.URL), fields.Notes,
			createdAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		out = &models.Entry{
			EntryID:   id,
			GroupID:   groupID,
			Title:     fields.Title,
			Username:  fields.Username,
			Password:  fields.Password,
			URL:       fields.URL,
			Notes:     fields.Notes,
			CreatedAt: createdAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "entry created", "entry_id", id, "group_id", groupID)
	return out, nil
}

// GetEntriesByGroup returns a page of entries under groupID in insertion
// order. amount <= 0 falls back to DefaultPageSize, offset < 0 to zero.
func (s *Store) GetEntriesByGroup(ctx context.Context, groupID uuid.UUID, amount, offset int) ([]models.Entry, error) {
	if amount <= 0 {
		amount = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var out []models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := groupExists(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("group %s: %w", groupID, common.ErrNotFound)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT entry_id, group_id, title, username, password, url, notes, created_at
			 FROM password_entries WHERE group_id = ? ORDER BY rowid LIMIT ? OFFSET ?`,
			groupID.String(), amount, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]models.Entry, 0)
		for rows.Next() {
			e, err := scanEntryRows(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEntryByID removes a single entry.
func (s *Store) DeleteEntryByID(ctx context.Context, entryID uuid.UUID) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM password_entries WHERE entry_id = ?`, entryID.String())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("entry %s: %w", entryID, common.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "entry deleted", "entry_id", entryID)
	return nil
}

// UpdateEntry replaces the editable fields of an entry. GroupID and
// CreatedAt are preserved from the existing row regardless of input.
func (s *Store) UpdateEntry(ctx context.Context, entryID uuid.UUID, fields models.EntryFields) (*models.Entry, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var out *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := scanEntryRow(tx.QueryRowContext(ctx,
			`SELECT entry_id, group_id, title, username, password, url, notes, created_at
			 FROM password_entries WHERE entry_id = ?`, entryID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("entry %s: %w", entryID, common.ErrNotFound)
			}
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE password_entries SET title = ?, username = ?, password = ?, url = ?, notes = ? WHERE entry_id = ?`,
			fields.Title, fields.Username, fields.Password,
			nullableString(fields.URL), fields.Notes,
			entryID.String(),
		)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		out = &models.Entry{
			EntryID:   existing.EntryID,
			GroupID:   existing.GroupID,
			Title:     fields.Title,
			Username:  fields.Username,
			Password:  fields.Password,
			URL:       fields.URL,
			Notes:     fields.Notes,
			CreatedAt: existing.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "entry updated", "entry_id", entryID)
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc rowScanner) (models.Entry, error) {
	var (
		e          models.Entry
		eid, gid   string
		urlVal     sql.NullString
		createdRaw string
	)
	if err := sc.Scan(&eid, &gid, &e.Title, &e.Username, &e.Password, &urlVal, &e.Notes, &createdRaw); err != nil {
		return models.Entry{}, err
	}

	entryID, err := uuid.Parse(eid)
	if err != nil {
		return models.Entry{}, fmt.Errorf("stored entry id: %w", err)
	}
	groupID, err := uuid.Parse(gid)
	if err != nil {
		return models.Entry{}, fmt.Errorf("stored group id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return models.Entry{}, fmt.Errorf("stored created_at: %w", err)
	}

	e.EntryID = entryID
	e.GroupID = groupID
	e.CreatedAt = createdAt
	if urlVal.Valid {
		e.URL = urlVal.String
	}
	return e, nil
}

func scanEntryRow(row *sql.Row) (models.Entry, error)    { return scanEntry(row) }
func scanEntryRows(rows *sql.Rows) (models.Entry, error) { return scanEntry(rows) }

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
