package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints allow you to save the current state of your budget before making
risky changes, and restore to a previous state if needed.`,
		Example: `  # Create a checkpoint before importing a statement
  sats checkpoint create --tag pre-june-import

  # List all checkpoints
  sats checkpoint list

  # Restore from a checkpoint
  sats checkpoint restore pre-june-import

  # Delete an old checkpoint
  sats checkpoint delete pre-june-import`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// autoCheckpoint snapshots the database before a destructive operation.
func autoCheckpoint(ctx context.Context, store *storage.SQLiteStorage, out io.Writer, operation string) error {
	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	cp, err := manager.AutoCheckpoint(ctx, operation)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render("Saved checkpoint "+cp.ID))
	return nil
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Long:  `Create a snapshot of the current database state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}

				cp, err := manager.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}

				out := cmd.OutOrStdout()
				success(out, "Created checkpoint %s (%s)", cli.InfoStyle.Render(cp.ID), formatFileSize(cp.FileSize))
				if cp.Description != "" {
					_, _ = fmt.Fprintf(out, "  Description: %s\n", cp.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint tag (generated when empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the checkpoint")
	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}

				checkpoints, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					notice(out, "No checkpoints found.")
					return nil
				}

				t := cli.NewTable(out)
				t.Header("NAME", "CREATED", "SIZE", "TRANSACTIONS", "CATEGORIES", "ALLOCATIONS", "TYPE")
				for _, cp := range checkpoints {
					kind := "manual"
					if cp.IsAuto {
						kind = "auto"
					}
					t.Row(cp.ID, formatRelativeTime(cp.CreatedAt), formatFileSize(cp.FileSize),
						fmt.Sprint(cp.Transactions), fmt.Sprint(cp.Categories), fmt.Sprint(cp.Allocations),
						cli.SubtleStyle.Render(kind))
				}
				return t.Flush()
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the database from a checkpoint",
		Long: `Replace the current database with a checkpoint. The current state is saved
as an automatic checkpoint first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}

				cp, err := manager.Get(ctx, id)
				if err != nil {
					return err
				}

				desc := "Created " + cp.CreatedAt.Format("2006-01-02 15:04:05")
				if cp.Description != "" {
					desc += ": " + cp.Description
				}
				if err := cli.Confirm(confirm, yes, fmt.Sprintf("Replace the budget with checkpoint %s?", id), desc); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if err := autoCheckpoint(ctx, store, out, "restore"); err != nil {
					return err
				}

				// Restore closes the database underneath store.
				if err := manager.Restore(ctx, id); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}

				success(out, "Restored from checkpoint %s", cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				if _, err := manager.Get(ctx, id); err != nil {
					return err
				}

				if err := cli.Confirm(confirm, yes, fmt.Sprintf("Delete checkpoint %s?", id), "This cannot be undone."); err != nil {
					return err
				}
				if err := manager.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}
				success(cmd.OutOrStdout(), "Deleted checkpoint %s", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
