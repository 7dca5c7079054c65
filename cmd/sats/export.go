package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sats-budget/internal/config"
	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/service"
	"github.com/Veraticus/sats-budget/internal/sheets"
	"github.com/Veraticus/sats-budget/internal/storage"
)

// newReportWriter builds the spreadsheet writer. Tests replace it.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the budget",
	}
	cmd.AddCommand(exportSheetsCmd())
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var spreadsheetID string

	cmd := &cobra.Command{
		Use:   "sheets [YYYY-MM]",
		Short: "Write a month's budget to Google Sheets",
		Long: `Write the month summary, every category envelope and the month's
transactions to a Google spreadsheet. Amounts are written in BTC.

Authenticate with a service account (sheets.service_account_path) or with an
OAuth2 refresh token from 'sats auth sheets'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			m, err := parseMonth(arg)
			if err != nil {
				return err
			}

			cfg, err := config.LoadSheetsConfig()
			if err != nil {
				return err
			}
			if spreadsheetID != "" {
				cfg.SpreadsheetID = spreadsheetID
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				summary, err := ledger.New(store).MonthSummary(ctx, m)
				if err != nil {
					return err
				}
				txns, err := store.QueryTransactions(ctx, service.ForMonth(m))
				if err != nil {
					return fmt.Errorf("failed to get transactions: %w", err)
				}

				writer, err := newReportWriter(ctx, *cfg)
				if err != nil {
					return fmt.Errorf("failed to create sheets writer: %w", err)
				}
				report := &sheets.Report{
					Generated:    time.Now(),
					Summary:      summary,
					Transactions: txns,
				}
				if err := writer.Write(ctx, report); err != nil {
					return fmt.Errorf("failed to export to sheets: %w", err)
				}

				success(cmd.OutOrStdout(), "Exported %s (%d categories, %d transactions) to Google Sheets",
					m, len(summary.Categories), len(txns))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "write to this spreadsheet instead of the configured one")
	return cmd
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets access with OAuth2",
		Long: `Run the OAuth2 consent flow in your browser and print the refresh token to
put in sheets.refresh_token (or GOOGLE_SHEETS_REFRESH_TOKEN).

Requires sheets.client_id and sheets.client_secret (or the GOOGLE_SHEETS_*
equivalents) from a Google Cloud OAuth client of type "Desktop app".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := sheets.DefaultConfig()
			cfg.ClientID = viper.GetString("sheets.client_id")
			cfg.ClientSecret = viper.GetString("sheets.client_secret")
			cfg.LoadFromEnv()
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return fmt.Errorf("sheets.client_id and sheets.client_secret must be set")
			}

			tokenFile := viper.GetString("sheets.token_file")
			if tokenFile == "" {
				tokenFile = filepath.Join("~", ".config", "sats", "sheets-token.json")
			}
			tokenFile = config.ExpandPath(tokenFile)

			out := cmd.OutOrStdout()
			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenFile:    tokenFile,
				ListenAddr:   listen,
			}, func(url string) {
				_, _ = fmt.Fprintf(out, "Open this URL in your browser to authorize access:\n\n  %s\n\n", url)
			})
			if err != nil {
				return err
			}

			if err := sheets.SaveToken(tokenFile, token); err != nil {
				return err
			}

			success(out, "Authorized. Token saved to %s", tokenFile)
			_, _ = fmt.Fprintf(out, "\nAdd this to your config:\n\nsheets:\n  refresh_token: %s\n", token.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "address for the OAuth2 callback")
	return cmd
}
