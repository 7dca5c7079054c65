package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/config"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
	"github.com/Veraticus/sats-budget/internal/storage"
)

// confirm asks before destructive operations. Tests replace it.
var confirm cli.Confirmer = cli.HuhConfirm

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStore opens storage, runs fn and closes storage again.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *storage.SQLiteStorage) error) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(ctx, store)
}

// parseDate reads a YYYY-MM-DD date, defaulting to today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return model.Day(time.Now()), nil
	}
	return model.ParseDate(s)
}

// parseMonth reads a YYYY-MM month, defaulting to the current month.
func parseMonth(s string) (model.Month, error) {
	if s == "" {
		return model.CurrentMonth(), nil
	}
	return model.ParseMonth(s)
}

// parseAllocationAmount accepts the same forms as model.ParseAmount plus zero.
func parseAllocationAmount(s string) (model.Sats, error) {
	return model.ParseAllocation(s)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid %s id %q", what, s), err)
	}
	return id, nil
}

// resolveCategory finds a category by id or by name, ignoring case.
func resolveCategory(ctx context.Context, store service.Store, ref string) (model.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		cat, err := store.GetCategory(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return model.Category{}, common.NewUserError(fmt.Sprintf("no category with id %d", id), err)
			}
			return model.Category{}, err
		}
		return *cat, nil
	}

	cats, err := store.ListCategories(ctx)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to get categories: %w", err)
	}
	for _, c := range cats {
		if c.Name == ref {
			return c, nil
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return model.Category{}, common.NewUserError(
		fmt.Sprintf("category %q not found. Use 'sats category add' to create it", ref), common.ErrNotFound)
}

// resolveGroup finds a group by id or name.
func resolveGroup(ctx context.Context, store service.Store, ref string) (model.CategoryGroup, error) {
	groups, err := store.ListGroups(ctx)
	if err != nil {
		return model.CategoryGroup{}, fmt.Errorf("failed to get groups: %w", err)
	}
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for _, g := range groups {
		if (idErr == nil && g.ID == id) || strings.EqualFold(g.Name, ref) {
			return g, nil
		}
	}
	return model.CategoryGroup{}, common.NewUserError(fmt.Sprintf("group %q not found", ref), common.ErrNotFound)
}

func success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf(format, args...)))
}

func notice(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf(format, args...)))
}
