package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
)

// InsertIncome records income for the given date and returns its id.
func (s *SQLiteStorage) InsertIncome(ctx context.Context, amount model.Sats, description string, date time.Time) (int64, error) {
	txn := model.Transaction{
		Date:        date,
		Description: strings.TrimSpace(description),
		Kind:        model.KindIncome,
		Amount:      amount,
	}
	return s.insertTransaction(ctx, &txn)
}

// InsertExpense records spending against a category and returns its id.
func (s *SQLiteStorage) InsertExpense(ctx context.Context, amount model.Sats, description string, categoryID int64, date time.Time) (int64, error) {
	txn := model.Transaction{
		Date:        date,
		Description: strings.TrimSpace(description),
		Kind:        model.KindExpense,
		CategoryID:  &categoryID,
		Amount:      amount,
	}
	return s.insertTransaction(ctx, &txn)
}

func (s *SQLiteStorage) insertTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := txn.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if txn.CategoryID != nil {
			if err := categoryExistsTx(ctx, tx, *txn.CategoryID); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (date, description, amount, kind, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			txn.Date.Format(model.DateLayout),
			txn.Description,
			int64(txn.Amount),
			string(txn.Kind),
			nullableID(txn.CategoryID),
			time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", txn.Kind, err)
		}

		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("recorded transaction",
		"id", id,
		"kind", txn.Kind,
		"amount", int64(txn.Amount),
		"date", txn.Date.Format(model.DateLayout))
	return id, nil
}

// UpdateTransaction replaces the stored fields of txn.ID. It reports false when no such transaction exists.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn model.Transaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateID(txn.ID, "id"); err != nil {
		return false, err
	}
	txn.Description = strings.TrimSpace(txn.Description)
	if err := txn.Validate(); err != nil {
		return false, err
	}

	var updated bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if txn.CategoryID != nil {
			if err := categoryExistsTx(ctx, tx, *txn.CategoryID); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET date = ?, description = ?, amount = ?, kind = ?, category_id = ?
			WHERE id = ?`,
			txn.Date.Format(model.DateLayout),
			txn.Description,
			int64(txn.Amount),
			string(txn.Kind),
			nullableID(txn.CategoryID),
			txn.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		updated = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if updated {
		slog.Info("updated transaction", "id", txn.ID)
	}
	return updated, nil
}

// DeleteTransaction removes a transaction. It reports false when the id was unknown.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var deleted bool
	err := s.write(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
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
		slog.Info("deleted transaction", "id", id)
	}
	return deleted, nil
}

// QueryTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) QueryTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidDateRange, filter.End.Format(model.DateLayout), filter.Start.Format(model.DateLayout))
	}

	var (
		where []string
		args  []any
	)
	if filter.Start != nil {
		where = append(where, "t.date >= ?")
		args = append(args, filter.Start.Format(model.DateLayout))
	}
	if filter.End != nil {
		where = append(where, "t.date <= ?")
		args = append(args, filter.End.Format(model.DateLayout))
	}
	if filter.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Kind != nil {
		where = append(where, "t.kind = ?")
		args = append(args, string(*filter.Kind))
	}

	query := `
		SELECT t.id, t.date, t.description, t.amount, t.kind, t.category_id, c.name, t.created_at
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY t.date DESC, t.id DESC"
	if filter.Limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", translateError(err))
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("queried transactions", "count", len(transactions))
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn          model.Transaction
		date         string
		kind         string
		amount       int64
		categoryID   sql.NullInt64
		categoryName sql.NullString
		createdAt    sql.NullTime
	)
	if err := row.Scan(&txn.ID, &date, &txn.Description, &amount, &kind, &categoryID, &categoryName, &createdAt); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", txn.ID, err)
	}

	txn.Date = parsed
	txn.Kind = model.Kind(kind)
	txn.Amount = model.Sats(amount)
	if categoryID.Valid {
		txn.CategoryID = model.Int64Ptr(categoryID.Int64)
	}
	txn.CategoryName = categoryName.String
	if createdAt.Valid {
		txn.CreatedAt = createdAt.Time
	}
	return txn, nil
}

func categoryExistsTx(ctx context.Context, tx *sql.Tx, id int64) error {
	var found int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
