package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/model"
)

// InsertGroup creates a category group. New groups sort after existing ones.
func (s *SQLiteStorage) InsertGroup(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	name, err := model.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO category_groups (name, sort_order, created_at)
			VALUES (?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM category_groups), ?)`,
			name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to create group %q: %w", name, err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("created category group", "id", id, "name", name)
	return id, nil
}

// ListGroups returns groups in display order.
func (s *SQLiteStorage) ListGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sort_order, created_at
		FROM category_groups
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var groups []model.CategoryGroup
	for rows.Next() {
		var (
			g         model.CategoryGroup
			createdAt sql.NullTime
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.SortOrder, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if createdAt.Valid {
			g.CreatedAt = createdAt.Time
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// RenameGroup changes a group's name. It reports false when the id was unknown.
func (s *SQLiteStorage) RenameGroup(ctx context.Context, id int64, name string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	name, err := model.NormalizeName(name)
	if err != nil {
		return false, err
	}

	var renamed bool
	err = s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `UPDATE category_groups SET name = ? WHERE id = ?`, name, id)
		if err != nil {
			return fmt.Errorf("failed to rename group: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		renamed = rows > 0
		return nil
	})
	return renamed, err
}

// AssignCategoryGroup moves a category into a group, or out of any group when groupID is nil.
func (s *SQLiteStorage) AssignCategoryGroup(ctx context.Context, categoryID int64, groupID *int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if groupID != nil {
			var found int64
			err := tx.QueryRowContext(ctx, `SELECT id FROM category_groups WHERE id = ?`, *groupID).Scan(&found)
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: group %d", common.ErrNotFound, *groupID)
			}
			if err != nil {
				return fmt.Errorf("failed to look up group: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `UPDATE categories SET group_id = ? WHERE id = ?`, nullableID(groupID), categoryID)
		if err != nil {
			return fmt.Errorf("failed to assign group: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
		}
		return nil
	})
}
