package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/model"
)

const categoryColumns = `c.id, c.name, c.group_id, g.name, c.created_at`

// InsertCategory creates a new envelope and returns its id.
func (s *SQLiteStorage) InsertCategory(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	name, err := model.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (name, created_at) VALUES (?, ?)`,
			name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", name, err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("created category", "id", id, "name", name)
	return id, nil
}

// GetCategory returns a category by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories c
		LEFT JOIN category_groups g ON g.id = c.group_id
		WHERE c.id = ?`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories c
		LEFT JOIN category_groups g ON g.id = c.group_id
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// RenameCategory changes a category's name. It reports false when the id was unknown.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, id int64, name string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	name, err := model.NormalizeName(name)
	if err != nil {
		return false, err
	}

	var renamed bool
	err = s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
		if err != nil {
			return fmt.Errorf("failed to rename category: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		renamed = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if renamed {
		slog.Info("renamed category", "id", id, "name", name)
	}
	return renamed, nil
}

// DeleteCategory removes a category together with its transactions and allocations.
// Either everything goes or nothing does.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) (model.CategoryDeletion, error) {
	if err := validateContext(ctx); err != nil {
		return model.CategoryDeletion{}, err
	}

	var result model.CategoryDeletion
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		result = model.CategoryDeletion{}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id,
		).Scan(&result.Transactions); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM allocations WHERE category_id = ?`, id,
		).Scan(&result.Allocations); err != nil {
			return fmt.Errorf("failed to count allocations: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM allocations WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete allocations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		result.Deleted = rows > 0
		return nil
	})
	if err != nil {
		return model.CategoryDeletion{}, err
	}

	if result.Deleted {
		slog.Info("deleted category",
			"id", id,
			"transactions", result.Transactions,
			"allocations", result.Allocations)
	}
	return result, nil
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat       model.Category
		groupID   sql.NullInt64
		groupName sql.NullString
		createdAt sql.NullTime
	)
	if err := row.Scan(&cat.ID, &cat.Name, &groupID, &groupName, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, err
		}
		return model.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	if groupID.Valid {
		cat.GroupID = model.Int64Ptr(groupID.Int64)
	}
	cat.GroupName = groupName.String
	if createdAt.Valid {
		cat.CreatedAt = createdAt.Time
	}
	return cat, nil
}
