package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/config"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/ofx"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from statements",
	}
	cmd.AddCommand(importOFXCmd())
	return cmd
}

type importOptions struct {
	category     string
	unit         string
	dryRun       bool
	skipExpenses bool
	noCheckpoint bool
}

func importOFXCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX statements. Credits are recorded as
income and debits as expenses in the category given with --category.

Statement amounts are read as BTC unless --unit sats is given (or import.unit
is set in the config file). Amounts finer than one sat are truncated.`,
		Example: `  # Import a wallet export, booking all spending to one category
  sats import ofx ~/Downloads/wallet_2025-06.ofx --category Spending

  # Preview a sats-denominated file without saving
  sats import ofx statement.qfx --unit sats --category Misc --dry-run

  # Import only the income from several files
  sats import ofx ~/Downloads/*.ofx --skip-expenses`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportOFX(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "category for imported expenses")
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "statement amount unit (btc or sats)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "preview import without saving")
	cmd.Flags().BoolVar(&opts.skipExpenses, "skip-expenses", false, "import income only")
	cmd.Flags().BoolVar(&opts.noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")

	return cmd
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseStatements(ctx context.Context, parser *ofx.Parser, files []string) ([]ofx.Entry, error) {
	var entries []ofx.Entry
	seen := make(map[string]bool)

	for _, path := range files {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		added := 0
		for _, e := range parsed {
			if e.FITID != "" {
				if seen[e.FITID] {
					continue
				}
				seen[e.FITID] = true
			}
			entries = append(entries, e)
			added++
		}
		slog.Info("Processed file", "file", filepath.Base(path), "entries", added, "duplicates", len(parsed)-added)
	}
	return entries, nil
}

func runImportOFX(cmd *cobra.Command, args []string, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	settings, err := config.Load()
	if err != nil {
		return err
	}
	unit := settings.ImportUnit
	if opts.unit != "" {
		if unit, err = ofx.ParseUnit(opts.unit); err != nil {
			return err
		}
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	entries, err := parseStatements(ctx, ofx.NewParser(unit), files)
	if err != nil {
		return err
	}

	var income, expenses int
	var incomeTotal, expenseTotal model.Sats
	for _, e := range entries {
		if e.Kind == model.KindIncome {
			income++
			incomeTotal += e.Amount
		} else {
			expenses++
			expenseTotal += e.Amount
		}
	}
	if opts.skipExpenses {
		expenses, expenseTotal = 0, 0
	}
	if expenses > 0 && opts.category == "" {
		return fmt.Errorf("%d expenses need a category: pass --category or --skip-expenses", expenses)
	}

	_, _ = fmt.Fprintf(out, "Found %d income entries (%s) and %d expenses (%s) in %d files\n",
		income, model.FormatSats(incomeTotal), expenses, model.FormatSats(expenseTotal), len(files))

	if opts.dryRun {
		t := cli.NewTable(out)
		t.Header("DATE", "KIND", "AMOUNT", "DESCRIPTION")
		for _, e := range entries {
			if opts.skipExpenses && e.Kind == model.KindExpense {
				continue
			}
			t.Row(cli.Date(e.Date), string(e.Kind), model.FormatSats(e.Amount), e.Description)
		}
		if err := t.Flush(); err != nil {
			return err
		}
		notice(out, "Dry run: nothing was saved.")
		return nil
	}

	return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
		var categoryID int64
		if expenses > 0 {
			cat, err := resolveCategory(ctx, store, opts.category)
			if err != nil {
				return err
			}
			categoryID = cat.ID
		}

		if !opts.noCheckpoint {
			if err := autoCheckpoint(ctx, store, out, "import"); err != nil {
				return err
			}
		}

		bar := cli.NewProgress(cmd.ErrOrStderr(), income+expenses, "Importing")
		saved := 0
		for _, e := range entries {
			switch {
			case e.Kind == model.KindIncome:
				_, err = store.InsertIncome(ctx, e.Amount, e.Description, e.Date)
			case opts.skipExpenses:
				continue
			default:
				_, err = store.InsertExpense(ctx, e.Amount, e.Description, categoryID, e.Date)
			}
			if err != nil {
				return fmt.Errorf("failed to save %s from %s after %d entries: %w", e.Kind, cli.Date(e.Date), saved, err)
			}
			saved++
			_ = bar.Add(1)
		}

		slog.Info("Imported OFX entries", "saved", saved, "files", len(files))
		success(out, "Imported %d entries", saved)
		return nil
	})
}
