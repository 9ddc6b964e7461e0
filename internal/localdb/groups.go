package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/common"
	"github.com/newguy103/passvault-client/internal/dbx"
	"github.com/newguy103/passvault-client/internal/models"
)

// CreateGroup creates a child group under parentID with a locally generated
// identifier. The returned projection always has an empty children list.
func (s *Store) CreateGroup(ctx context.Context, name string, parentID uuid.UUID) (*models.GroupWithChildren, error) {
	return s.CreateGroupWithID(ctx, uuid.New(), name, parentID)
}

// CreateGroupWithID creates a child group using a caller-supplied identifier.
// The explicit id path exists for the reconciler, which mirrors the
// remote-assigned identifier so both copies share identity.
func (s *Store) CreateGroupWithID(ctx context.Context, id uuid.UUID, name string, parentID uuid.UUID) (*models.GroupWithChildren, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty group name", common.ErrValidation)
	}

	var out *models.GroupWithChildren
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := groupExists(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("parent group %s: %w", parentID, common.ErrNotFound)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO password_groups (group_id, group_name, parent_id, is_root) VALUES (?, ?, ?, 0)`,
			id.String(), name, parentID.String(),
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}

		pid := parentID
		out = &models.GroupWithChildren{
			Group:    models.Group{GroupID: id, GroupName: name, ParentID: &pid},
			Children: []models.Group{},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "group created", "group_id", id, "parent_id", parentID)
	return out, nil
}

// GetChildrenOfRoot resolves the unique root group and returns it with its
// direct children.
func (s *Store) GetChildrenOfRoot(ctx context.Context) (*models.GroupWithChildren, error) {
	var out *models.GroupWithChildren
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		root, err := scanGroup(tx.QueryRowContext(ctx,
			`SELECT group_id, group_name, parent_id, is_root FROM password_groups WHERE is_root = 1`))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("root group: %w", common.ErrNotFound)
			}
			return err
		}

		out, err = withChildren(ctx, tx, root)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetChildrenOfGroup returns the group and its direct children. The root has
// a single entry point regardless of caller: asking for the root id delegates
// to GetChildrenOfRoot.
func (s *Store) GetChildrenOfGroup(ctx context.Context, id uuid.UUID) (*models.GroupWithChildren, error) {
	g, err := s.GetGroupInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.IsRoot {
		return s.GetChildrenOfRoot(ctx)
	}

	var out *models.GroupWithChildren
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		out, err = withChildren(ctx, tx, *g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetGroupInfo returns the bare group row without children.
func (s *Store) GetGroupInfo(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var out models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := scanGroup(tx.QueryRowContext(ctx,
			`SELECT group_id, group_name, parent_id, is_root FROM password_groups WHERE group_id = ?`, id.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("group %s: %w", id, common.ErrNotFound)
			}
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameGroup updates the display name of a group. Renaming the root is
// allowed; identity and hierarchy are untouched.
func (s *Store) RenameGroup(ctx context.Context, id uuid.UUID, name string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty group name", common.ErrValidation)
	}

	var out models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := scanGroup(tx.QueryRowContext(ctx,
			`SELECT group_id, group_name, parent_id, is_root FROM password_groups WHERE group_id = ?`, id.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("group %s: %w", id, common.ErrNotFound)
			}
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE password_groups SET group_name = ? WHERE group_id = ?`, name, id.String()); err != nil {
			return fmt.Errorf("rename group: %w", err)
		}

		g.GroupName = name
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "group renamed", "group_id", id)
	return &out, nil
}

// MoveGroup re-parents a group. The root cannot be moved, and the new parent
// must not be the group itself or any of its descendants (the tree must stay
// acyclic).
func (s *Store) MoveGroup(ctx context.Context, id, newParentID uuid.UUID) (*models.Group, error) {
	var out models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := scanGroup(tx.QueryRowContext(ctx,
			`SELECT group_id, group_name, parent_id, is_root FROM password_groups WHERE group_id = ?`, id.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("group %s: %w", id, common.ErrNotFound)
			}
			return err
		}
		if g.IsRoot {
			return fmt.Errorf("cannot move the root group: %w", common.ErrInvalidOperation)
		}

		ok, err := groupExists(ctx, tx, newParentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("new parent group %s: %w", newParentID, common.ErrNotFound)
		}

		// Reject moves into the group's own subtree.
		var inSubtree int
		row := tx.QueryRowContext(ctx, `
WITH RECURSIVE subtree (gid) AS (
    SELECT group_id FROM password_groups WHERE group_id = ?
    UNION ALL
    SELECT g.group_id FROM password_groups g JOIN subtree s ON g.parent_id = s.gid
)
SELECT COUNT(*) FROM subtree WHERE gid = ?`, id.String(), newParentID.String())
		if err := row.Scan(&inSubtree); err != nil {
			return err
		}
		if inSubtree > 0 {
			return fmt.Errorf("group %s cannot become a child of its own subtree: %w", id, common.ErrInvalidOperation)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE password_groups SET parent_id = ? WHERE group_id = ?`, newParentID.String(), id.String()); err != nil {
			return fmt.Errorf("move group: %w", err)
		}

		pid := newParentID
		g.ParentID = &pid
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "group moved", "group_id", id, "new_parent_id", newParentID)
	return &out, nil
}

// DeleteGroup deletes a non-root group. Descendant groups and every entry
// under the subtree are removed by the schema's cascade rules.
func (s *Store) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var isRoot int
		row := tx.QueryRowContext(ctx, `SELECT is_root FROM password_groups WHERE group_id = ?`, id.String())
		if err := row.Scan(&isRoot); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("group %s: %w", id, common.ErrNotFound)
			}
			return err
		}
		if isRoot == 1 {
			return fmt.Errorf("cannot delete the root group: %w", common.ErrInvalidOperation)
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM password_groups WHERE group_id = ?`, id.String())
		return err
	})
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "group deleted", "group_id", id)
	return nil
}

// scanGroup reads one group row from a QueryRow result.
func scanGroup(row *sql.Row) (models.Group, error) {
	var (
		g      models.Group
		gid    string
		parent sql.NullString
		isRoot int
	)
	if err := row.Scan(&gid, &g.GroupName, &parent, &isRoot); err != nil {
		return models.Group{}, err
	}

	id, err := uuid.Parse(gid)
	if err != nil {
		return models.Group{}, fmt.Errorf("stored group id: %w", err)
	}
	g.GroupID = id
	g.IsRoot = isRoot == 1

	if parent.Valid {
		pid, err := uuid.Parse(parent.String)
		if err != nil {
			return models.Group{}, fmt.Errorf("stored parent id: %w", err)
		}
		g.ParentID = &pid
	}
	return g, nil
}

// withChildren attaches the direct children of g.
func withChildren(ctx context.Context, tx dbx.DBTX, g models.Group) (*models.GroupWithChildren, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT group_id, group_name, parent_id, is_root FROM password_groups WHERE parent_id = ? ORDER BY rowid`,
		g.GroupID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := make([]models.Group, 0)
	for rows.Next() {
		var (
			child  models.Group
			gid    string
			parent sql.NullString
			isRoot int
		)
		if err := rows.Scan(&gid, &child.GroupName, &parent, &isRoot); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(gid)
		if err != nil {
			return nil, fmt.Errorf("stored group id: %w", err)
		}
		child.GroupID = id
		if parent.Valid {
			pid, err := uuid.Parse(parent.String)
			if err != nil {
				return nil, fmt.Errorf("stored parent id: %w", err)
			}
			child.ParentID = &pid
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.GroupWithChildren{Group: g, Children: children}, nil
}
