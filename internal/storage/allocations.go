package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
)

// UpsertAllocation sets the amount assigned to a category for a month, replacing any previous value.
func (s *SQLiteStorage) UpsertAllocation(ctx context.Context, categoryID int64, month model.Month, amount model.Sats) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	alloc := model.Allocation{CategoryID: categoryID, Month: month, Amount: amount}
	if err := alloc.Validate(); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExistsTx(ctx, tx, categoryID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (category_id, month, amount, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (category_id, month) DO UPDATE SET
				amount = excluded.amount,
				updated_at = excluded.updated_at`,
			categoryID, month.String(), int64(amount), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to save allocation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("saved allocation",
		"category_id", categoryID,
		"month", month.String(),
		"amount", int64(amount))
	return nil
}

// DeleteAllocation removes an allocation. It reports false when none existed.
func (s *SQLiteStorage) DeleteAllocation(ctx context.Context, categoryID int64, month model.Month) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateMonth(month); err != nil {
		return false, err
	}

	var deleted bool
	err := s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx,
			`DELETE FROM allocations WHERE category_id = ? AND month = ?`,
			categoryID, month.String())
		if err != nil {
			return fmt.Errorf("failed to delete allocation: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		slog.Info("deleted allocation", "category_id", categoryID, "month", month.String())
	}
	return deleted, nil
}

// QueryAllocation returns the allocation for a category and month, and whether one exists.
func (s *SQLiteStorage) QueryAllocation(ctx context.Context, categoryID int64, month model.Month) (model.Sats, bool, error) {
	if err := validateContext(ctx); err != nil {
		return 0, false, err
	}
	if err := validateMonth(month); err != nil {
		return 0, false, err
	}

	var amount int64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM allocations WHERE category_id = ? AND month = ?`,
		categoryID, month.String()).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query allocation: %w", translateError(err))
	}
	return model.Sats(amount), true, nil
}

// QueryAllocations returns every allocation for a month ordered by category id.
func (s *SQLiteStorage) QueryAllocations(ctx context.Context, month model.Month) ([]model.Allocation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, amount FROM allocations WHERE month = ? ORDER BY category_id`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var allocations []model.Allocation
	for rows.Next() {
		var (
			categoryID int64
			amount     int64
		)
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, model.Allocation{
			Month:      month,
			CategoryID: categoryID,
			Amount:     model.Sats(amount),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}

	slog.Debug("retrieved allocations", "month", month.String(), "count", len(allocations))
	return allocations, nil
}
