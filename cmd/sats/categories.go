package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage budget categories",
		Long:    `List, add, rename, group and delete the category envelopes income is assigned to.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(groupCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cats, err := store.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(cats) == 0 {
					notice(out, "No categories found. Use 'sats category add' to create one.")
					return nil
				}

				t := cli.NewTable(out)
				t.Header("ID", "NAME", "GROUP")
				for _, c := range cats {
					group := c.GroupName
					if group == "" {
						group = cli.SubtleStyle.Render("-")
					}
					t.Row(fmt.Sprint(c.ID), c.Name, group)
				}
				return t.Flush()
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				id, err := store.InsertCategory(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}

				if group != "" {
					g, err := resolveGroup(ctx, store, group)
					if err != nil {
						return err
					}
					if err := store.AssignCategoryGroup(ctx, id, &g.ID); err != nil {
						return fmt.Errorf("failed to assign group: %w", err)
					}
				}

				success(cmd.OutOrStdout(), "Created category %q (ID: %d)", args[0], id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group to place the category in")
	return cmd
}

func renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[0])
				if err != nil {
					return err
				}
				ok, err := store.RenameCategory(ctx, cat.ID, args[1])
				if err != nil {
					return fmt.Errorf("failed to rename category: %w", err)
				}
				if !ok {
					return fmt.Errorf("category %d not found", cat.ID)
				}
				success(cmd.OutOrStdout(), "Renamed %q to %q", cat.Name, args[1])
				return nil
			})
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	var (
		yes          bool
		noCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category with its transactions and allocations",
		Long: `Delete a category. Every expense recorded against it and every allocation
made to it are deleted in the same operation. An automatic checkpoint is taken
first unless --no-checkpoint is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[0])
				if err != nil {
					return err
				}

				if err := cli.Confirm(confirm, yes,
					fmt.Sprintf("Delete category %q?", cat.Name),
					"Its transactions and allocations are deleted too."); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !noCheckpoint {
					if err := autoCheckpoint(ctx, store, out, "category-delete"); err != nil {
						return err
					}
				}

				result, err := store.DeleteCategory(ctx, cat.ID)
				if err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}
				if !result.Deleted {
					return fmt.Errorf("category %d not found", cat.ID)
				}

				success(out, "Deleted category %q with %d transactions and %d allocations",
					cat.Name, result.Transactions, result.Allocations)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")
	return cmd
}

func groupCategoryCmd() *cobra.Command {
	var ungroup bool

	cmd := &cobra.Command{
		Use:   "group <category> [group]",
		Short: "Place a category in a group",
		Example: `  sats category group Rent Housing
  sats category group Rent --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ungroup == (len(args) == 2) {
				return fmt.Errorf("give either a group or --clear")
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[0])
				if err != nil {
					return err
				}

				if ungroup {
					if err := store.AssignCategoryGroup(ctx, cat.ID, nil); err != nil {
						return fmt.Errorf("failed to clear group: %w", err)
					}
					success(cmd.OutOrStdout(), "Removed %q from its group", cat.Name)
					return nil
				}

				g, err := resolveGroup(ctx, store, args[1])
				if err != nil {
					return err
				}
				if err := store.AssignCategoryGroup(ctx, cat.ID, &g.ID); err != nil {
					return fmt.Errorf("failed to assign group: %w", err)
				}
				success(cmd.OutOrStdout(), "Moved %q into %q", cat.Name, g.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&ungroup, "clear", false, "remove the category from its group")
	return cmd
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Manage category groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				groups, err := store.ListGroups(ctx)
				if err != nil {
					return fmt.Errorf("failed to get groups: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					notice(out, "No groups found. Use 'sats group add' to create one.")
					return nil
				}

				cats, err := store.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}
				members := make(map[int64]int)
				for _, c := range cats {
					if c.GroupID != nil {
						members[*c.GroupID]++
					}
				}

				t := cli.NewTable(out)
				t.Header("ID", "NAME", "CATEGORIES")
				for _, g := range groups {
					t.Row(fmt.Sprint(g.ID), g.Name, fmt.Sprint(members[g.ID]))
				}
				return t.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				id, err := store.InsertGroup(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to create group: %w", err)
				}
				success(cmd.OutOrStdout(), "Created group %q (ID: %d)", args[0], id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <group> <new-name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				g, err := resolveGroup(ctx, store, args[0])
				if err != nil {
					return err
				}
				if _, err := model.NormalizeName(args[1]); err != nil {
					return err
				}
				ok, err := store.RenameGroup(ctx, g.ID, args[1])
				if err != nil {
					return fmt.Errorf("failed to rename group: %w", err)
				}
				if !ok {
					return fmt.Errorf("group %d not found", g.ID)
				}
				success(cmd.OutOrStdout(), "Renamed group %q to %q", g.Name, args[1])
				return nil
			})
		},
	})

	return cmd
}
